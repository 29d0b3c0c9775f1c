package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

func readyManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(nil)
	require.NoError(t, m.SetDocuments([]entity.Document{validDoc("a.pdf")}))
	require.NoError(t, m.AddKeyword(keyword(t, "Salary")))
	return m
}

func TestManager_CanStartFalseWhileProcessing(t *testing.T) {
	m := readyManager(t)
	assert.True(t, m.CanStartExtraction())

	require.NoError(t, m.StartProcessing())
	assert.False(t, m.CanStartExtraction())

	require.NoError(t, m.CompleteProcessing(entity.SingleResult(resultWith(0, constants.MatchFound), nil)))
	assert.True(t, m.CanStartExtraction())

	require.NoError(t, m.StartProcessing())
	require.NoError(t, m.FailProcessing("boom"))
	assert.True(t, m.CanStartExtraction())
}

func TestManager_SnapshotsAreIndependent(t *testing.T) {
	m := readyManager(t)
	snap := m.Snapshot()
	snap.ActiveKeywords = append(snap.ActiveKeywords, keyword(t, "Injected"))
	snap.Documents[0].IsValid = false
	snap.Status = constants.StatusError

	again := m.Snapshot()
	assert.Len(t, again.ActiveKeywords, 1)
	assert.True(t, again.Documents[0].IsValid)
	assert.Equal(t, constants.StatusReady, again.Status)
}

func TestManager_InputsAreCopied(t *testing.T) {
	m := readyManager(t)
	require.NoError(t, m.StartProcessing())

	batch := entity.SingleResult(resultWith(0, constants.MatchFound), []string{"Salary"})
	require.NoError(t, m.CompleteProcessing(batch))
	batch.Results[0].Matches[0].Value = "mutated"

	assert.Equal(t, "1", m.Snapshot().Results.Results[0].Matches[0].Value)
}

func TestManager_ObserversReceiveEveryMutation(t *testing.T) {
	m := NewManager(nil)
	var got []ApplicationState
	unsubscribe := m.Subscribe(func(s ApplicationState) error {
		got = append(got, s)
		return nil
	})

	require.NoError(t, m.SetDocuments([]entity.Document{validDoc("a.pdf")}))
	require.NoError(t, m.AddKeyword(keyword(t, "Salary")))
	assert.Error(t, m.AddKeyword(keyword(t, "salary")))
	m.AddError("note")

	require.Len(t, got, 3)
	assert.Equal(t, constants.StatusFileSelected, got[0].Status)
	assert.Equal(t, constants.StatusReady, got[1].Status)
	assert.Equal(t, []string{"note"}, got[2].ErrorMessages)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{got[0].Version, got[1].Version, got[2].Version})

	unsubscribe()
	m.ClearErrors()
	assert.Len(t, got, 3)
}

func TestManager_ObserverFailuresDoNotStopDelivery(t *testing.T) {
	m := NewManager(nil)
	delivered := 0
	m.Subscribe(func(ApplicationState) error { panic("bad observer") })
	m.Subscribe(func(ApplicationState) error { return errors.New("failing observer") })
	m.Subscribe(func(ApplicationState) error {
		delivered++
		return nil
	})

	m.AddError("x")
	m.AddError("y")

	assert.Equal(t, 2, delivered)
	assert.Equal(t, int64(4), m.Dispatcher().Failures())
}

func TestManager_ObserverMayCallBack(t *testing.T) {
	m := readyManager(t)
	var seen bool
	m.Subscribe(func(s ApplicationState) error {
		// would deadlock if the lock were held during dispatch
		seen = m.CanStartExtraction() == s.CanStartExtraction()
		_ = m.Snapshot()
		return nil
	})

	require.NoError(t, m.StartProcessing())
	assert.True(t, seen)
}

func TestManager_Reset(t *testing.T) {
	m := readyManager(t)
	m.Reset()
	s := m.Snapshot()
	assert.Equal(t, constants.StatusIdle, s.Status)
	assert.Empty(t, s.Documents)
	assert.Empty(t, s.ActiveKeywords)
	assert.Equal(t, uint64(3), s.Version)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := readyManager(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.AddError("e")
		}()
		go func() {
			defer wg.Done()
			s := m.Snapshot()
			s.ErrorMessages = append(s.ErrorMessages, "local")
		}()
	}
	wg.Wait()
	assert.Len(t, m.Snapshot().ErrorMessages, 20)
}
