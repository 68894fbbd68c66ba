package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLifecycle struct {
	name        string
	startErr    error
	stopErr     error
	startCalled *[]string
	stopCalled  *[]string
}

func (l *recordingLifecycle) Start() error {
	*l.startCalled = append(*l.startCalled, l.name)
	return l.startErr
}

func (l *recordingLifecycle) Stop() error {
	*l.stopCalled = append(*l.stopCalled, l.name)
	return l.stopErr
}

func TestNodeStartsAndStopsLifecyclesInOrder(t *testing.T) {
	var started, stopped []string
	n, err := New(&Config{})
	require.NoError(t, err)

	n.RegisterLifecycle(&recordingLifecycle{name: "a", startCalled: &started, stopCalled: &stopped})
	n.RegisterLifecycle(&recordingLifecycle{name: "b", startCalled: &started, stopCalled: &stopped})

	require.NoError(t, n.Start())
	require.True(t, n.Running())
	require.Equal(t, []string{"a", "b"}, started)

	require.NoError(t, n.Close())
	require.False(t, n.Running())
	require.Equal(t, []string{"b", "a"}, stopped)
}

func TestNodeStartUnwindsOnFailure(t *testing.T) {
	var started, stopped []string
	n, err := New(&Config{})
	require.NoError(t, err)

	n.RegisterLifecycle(&recordingLifecycle{name: "a", startCalled: &started, stopCalled: &stopped})
	n.RegisterLifecycle(&recordingLifecycle{name: "b", startErr: errors.New("boom"), startCalled: &started, stopCalled: &stopped})
	n.RegisterLifecycle(&recordingLifecycle{name: "c", startCalled: &started, stopCalled: &stopped})

	err = n.Start()
	require.Error(t, err)
	require.False(t, n.Running())
	require.Equal(t, []string{"a", "b"}, started)
	require.Equal(t, []string{"a"}, stopped)
	require.NotContains(t, started, "c")
}

func TestNodeStartTwiceFails(t *testing.T) {
	n, err := New(&Config{})
	require.NoError(t, err)
	var started, stopped []string
	n.RegisterLifecycle(&recordingLifecycle{name: "a", startCalled: &started, stopCalled: &stopped})

	require.NoError(t, n.Start())
	require.ErrorIs(t, n.Start(), errAlreadyRunning)
}

func TestNodeCloseWithoutStartFails(t *testing.T) {
	n, err := New(&Config{})
	require.NoError(t, err)
	require.ErrorIs(t, n.Close(), errNotRunning)
}
