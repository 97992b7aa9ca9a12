package workitem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
)

func TestDecodePlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"json list", `[{"id":"A","title":"a","status":"done"},{"id":"B","title":"b"}]`},
		{"json envelope", `{"tasks":[{"id":"A","title":"a"},{"id":"B","title":"b"}]}`},
		{"yaml list", "- id: A\n  title: a\n- id: B\n  title: b\n"},
		{"yaml envelope", "items:\n  - id: A\n    title: a\n  - id: B\n    title: b\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			items, err := workitem.DecodePlan([]byte(tc.data))
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, "A", items[0].ID)
			assert.Equal(t, "b", items[1].Title)
			assert.Equal(t, constants.ItemStatus(""), items[0].Status, "runtime fields are not taken from plans")
		})
	}
}

func TestDecodePlan_Invalid(t *testing.T) {
	t.Parallel()

	_, err := workitem.DecodePlan([]byte("  "))
	require.ErrorIs(t, err, dlerrors.ErrInvalidPlan)

	_, err = workitem.DecodePlan([]byte(`[{"title":"no id"}]`))
	require.ErrorIs(t, err, dlerrors.ErrInvalidPlan)

	_, err = workitem.DecodePlan([]byte(`[{"id":"A"},{"id":"A"}]`))
	require.ErrorIs(t, err, dlerrors.ErrDuplicateItemID)
}
