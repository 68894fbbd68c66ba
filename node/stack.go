package node

import (
	"github.com/strandnet/strand/anchor"
	"github.com/strandnet/strand/entry"
	"github.com/strandnet/strand/erasure"
	"github.com/strandnet/strand/gossip"
	"github.com/strandnet/strand/net"
	"github.com/strandnet/strand/oes"
	"github.com/strandnet/strand/params"
	"github.com/strandnet/strand/quorum"
	"github.com/strandnet/strand/regen"
)

// Stack holds one instance of every package the node wires together,
// grounded on SPEC_FULL.md §2.10's list: entry.Graph, gossip.History,
// anchor.Engine, oes's participant/registry/agreement, regen.Queue,
// erasure.Handler, and net.Host.
type Stack struct {
	Graph      *entry.Graph
	Validators *gossip.ValidatorSet
	History    *gossip.History
	Anchors    *anchor.Engine
	Finality   *anchor.FinalityChecker

	OES         *oes.Participant
	OESRegistry *oes.Registry
	OESPact     *oes.Agreement

	Regen *regen.Queue

	Erasure *erasure.Handler

	Peers *net.PeerSet
	Host  *net.Host
}

// NewStack builds every component for one node given its static
// network configuration, OES generation-seed material, and validator
// membership. oesSeed seeds the node's own genesis OES participant
// (spec.md §4.5 step 1); validators is the initial validator set this
// node observes gossip and anchor history through.
func NewStack(netConfig params.NetworkConfig, oesSeed []byte, validators *gossip.ValidatorSet, policy erasure.PolicyEngine) (*Stack, error) {
	participant, err := oes.NewGenesisParticipant(oesSeed)
	if err != nil {
		return nil, err
	}
	registry := oes.NewRegistry(netConfig.OESEpochWindow)

	graph := entry.NewGraph(entry.NewMemoryBackend(), registry, registry)
	history := gossip.NewHistory()
	engine := anchor.NewEngine(history, validators, netConfig)
	pool := quorum.NewPool(uint64(validators.Len()))
	finality := anchor.NewFinalityChecker(engine, pool)

	peers := net.NewPeerSet()
	host := net.NewHost(peers)

	s := &Stack{
		Graph:       graph,
		Validators:  validators,
		History:     history,
		Anchors:     engine,
		Finality:    finality,
		OES:         participant,
		OESRegistry: registry,
		OESPact:     oes.NewAgreement(uint64(validators.Len()), registry),
		Regen:       regen.NewQueue(),
		Erasure:     erasure.NewHandler(graph, policy, uint64(validators.Len())),
		Peers:       peers,
		Host:        host,
	}
	wireTopicHandlers(s)
	return s, nil
}

// wireTopicHandlers registers a placeholder handler for each of the
// five §4.8 topics. Every handler accepts and discards its payload and
// returns nil; none of them decodes messages or calls into the graph,
// history, anchor engine or erasure handler.
func wireTopicHandlers(s *Stack) {
	_ = s.Host.RegisterHandler(net.TopicEntries, func(net.PeerID, []byte) error {
		// Decoding inbound wire entries and admitting them to s.Graph is
		// not done here; this handler exists so Dispatch has a
		// registered target for the topic from process start.
		return nil
	})
	_ = s.Host.RegisterHandler(net.TopicGossip, func(net.PeerID, []byte) error { return nil })
	_ = s.Host.RegisterHandler(net.TopicAttestations, func(net.PeerID, []byte) error { return nil })
	_ = s.Host.RegisterHandler(net.TopicAnchors, func(net.PeerID, []byte) error { return nil })
	_ = s.Host.RegisterHandler(net.TopicErasure, func(net.PeerID, []byte) error { return nil })
}
