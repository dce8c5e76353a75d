package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coursesync/internal/record"
)

func recorder(calls *[]string, name string) Func[record.Course] {
	return func(ctx context.Context, e *Event[record.Course]) error {
		*calls = append(*calls, name)
		return nil
	}
}

func TestTrigger_Order(t *testing.T) {
	var h Hook[record.Course]
	var calls []string

	h.Bind(Handler[record.Course]{ID: "first", Before: recorder(&calls, "before-1"), After: recorder(&calls, "after-1")})
	h.Bind(Handler[record.Course]{ID: "second", Before: recorder(&calls, "before-2")})
	h.BindAfter("third", recorder(&calls, "after-3"))

	e := &Event[record.Course]{Kind: record.KindCreated, Record: record.Course{ID: "c1"}}
	err := h.Trigger(context.Background(), e, recorder(&calls, "persist"))
	require.NoError(t, err)

	assert.Equal(t, []string{"before-1", "before-2", "persist", "after-1", "after-3"}, calls)
	assert.Equal(t, 3, h.Len())
}

func TestTrigger_BeforeErrorSkipsPersist(t *testing.T) {
	var h Hook[record.Course]
	var calls []string
	veto := errors.New("veto")

	h.Bind(Handler[record.Course]{ID: "guard", Before: func(context.Context, *Event[record.Course]) error { return veto }})
	h.BindAfter("after", recorder(&calls, "after"))

	err := h.Trigger(context.Background(), &Event[record.Course]{Kind: record.KindUpdated}, recorder(&calls, "persist"))
	require.ErrorIs(t, err, veto)
	assert.Contains(t, err.Error(), "guard: before updated")
	assert.Empty(t, calls)
}

func TestTrigger_PersistErrorSkipsAfter(t *testing.T) {
	var h Hook[record.Course]
	var calls []string
	fail := errors.New("disk full")

	h.BindAfter("after", recorder(&calls, "after"))

	err := h.Trigger(context.Background(), &Event[record.Course]{Kind: record.KindCreated},
		func(context.Context, *Event[record.Course]) error { return fail })
	assert.Equal(t, fail, err)
	assert.Empty(t, calls)
}

func TestTrigger_AfterErrorStopsRemaining(t *testing.T) {
	var h Hook[record.Course]
	var calls []string
	fail := errors.New("cascade failed")

	h.BindAfter("broken", func(context.Context, *Event[record.Course]) error { return fail })
	h.BindAfter("never", recorder(&calls, "never"))

	err := h.Trigger(context.Background(), &Event[record.Course]{Kind: record.KindDeleted}, nil)
	require.ErrorIs(t, err, fail)
	assert.Contains(t, err.Error(), "broken: after deleted")
	assert.Empty(t, calls)
}

func TestTrigger_AfterSeesMutations(t *testing.T) {
	var h Hook[record.Course]

	h.BindAfter("rewrite", func(_ context.Context, e *Event[record.Course]) error {
		e.Record.Assignees = []string{"u1"}
		return nil
	})

	e := &Event[record.Course]{Kind: record.KindCreated, Record: record.Course{ID: "c1"}}
	require.NoError(t, h.Trigger(context.Background(), e, nil))
	assert.Equal(t, []string{"u1"}, e.Record.Assignees)
}

func TestSet_On(t *testing.T) {
	var s Set[record.Progress]

	assert.Same(t, &s.Created, s.On(record.KindCreated))
	assert.Same(t, &s.Updated, s.On(record.KindUpdated))
	assert.Same(t, &s.Deleted, s.On(record.KindDeleted))
	assert.Panics(t, func() { s.On("renamed") })
}
