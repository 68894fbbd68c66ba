// Package node wires the module's packages (entry, gossip, anchor,
// oes, regen, erasure, net) into one running process. It is ambient
// process-lifecycle plumbing, not itself one of the core modules
// (spec.md §2 lists eight modules ending at network runtime; node/
// is the "how does a binary actually start and stop all of them"
// layer every complete repo in the corpus has on top of its modules).
//
// Grounded on node/node_example_test.go and node/utils_test.go, the
// only node/ source that survived the retrieval pack: a Config,
// RegisterLifecycle, Start, and Close with the exact same names and
// call shape those tests exercise. The RPC/protocol registration
// surface those tests also show (RegisterAPIs, RegisterProtocols) has
// no counterpart here, since the module exposes no RPC API server.
package node

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/strandnet/strand/log"
)

// Lifecycle is a component the Node starts and stops as a unit, the
// same minimal interface node_example_test.go's SampleLifecycle and
// utils_test.go's NoopLifecycle implement.
type Lifecycle interface {
	Start() error
	Stop() error
}

// Config holds settings for a Node. New copies it into the Node; no
// code in this module reads its fields, and NewStack takes its
// settings from its own arguments instead.
type Config struct {
	// DataDir names a directory for persisted state. NewStack does not
	// consult it and always builds an in-memory entry backend.
	DataDir string

	// TotalWeight is a validator set's total voting weight. NewStack
	// does not consult it and sizes every quorum.Pool from
	// validators.Len().
	TotalWeight uint64

	// EpochWindow is an OES acceptance window width. NewStack does not
	// consult it and uses params.NetworkConfig.OESEpochWindow.
	EpochWindow uint64
}

var errAlreadyRunning = errors.New("node: already running")
var errNotRunning = errors.New("node: not running")

// Node manages the start/stop order of every registered Lifecycle.
type Node struct {
	mu         sync.Mutex
	config     Config
	lifecycles []Lifecycle
	running    bool
	log        log.Logger
}

// New creates a Node from config. Lifecycles are registered
// separately via RegisterLifecycle before Start is called.
func New(config *Config) (*Node, error) {
	if config == nil {
		config = &Config{}
	}
	return &Node{config: *config, log: log.NewContext("module", "node")}, nil
}

// RegisterLifecycle adds a component to be started and stopped with
// the node. Order of registration is the start order; stop happens in
// reverse.
func (n *Node) RegisterLifecycle(lc Lifecycle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lifecycles = append(n.lifecycles, lc)
}

// Start starts every registered lifecycle in registration order. If
// one fails, every lifecycle started before it is stopped again
// before Start returns the error.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return errAlreadyRunning
	}
	for i, lc := range n.lifecycles {
		if err := lc.Start(); err != nil {
			for j := i - 1; j >= 0; j-- {
				if stopErr := n.lifecycles[j].Stop(); stopErr != nil {
					n.log.Error("failed to unwind lifecycle after start failure", "err", stopErr)
				}
			}
			return fmt.Errorf("node: start lifecycle %d: %w", i, err)
		}
	}
	n.running = true
	return nil
}

// Close stops every registered lifecycle in reverse order, collecting
// but not short-circuiting on individual failures.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.running {
		return errNotRunning
	}
	var firstErr error
	for i := len(n.lifecycles) - 1; i >= 0; i-- {
		if err := n.lifecycles[i].Stop(); err != nil {
			n.log.Error("lifecycle stop failed", "index", i, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	n.running = false
	return firstErr
}

// Running reports whether Start has succeeded and Close has not yet
// been called.
func (n *Node) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

// Wait blocks until SIGINT or SIGTERM is received, then calls Close.
// It is the process entry point's usual last call after Start.
func (n *Node) Wait() error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	signal.Stop(sig)
	n.log.Info("received shutdown signal")
	return n.Close()
}
