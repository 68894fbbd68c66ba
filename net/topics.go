package net

// Topic names one of the five message classes spec.md §4.8 requires
// the transport to dispatch, replacing the teacher's block/transaction/
// receipt subprotocol messages (tos/protocols/tos) with the DAG
// ledger's own message classes.
type Topic string

const (
	TopicEntries      Topic = "entries"
	TopicGossip       Topic = "gossip"
	TopicAttestations Topic = "attestations"
	TopicAnchors      Topic = "anchors"
	TopicErasure      Topic = "erasure"
)

// Topics lists every topic a host dispatches, in a stable order.
func Topics() []Topic {
	return []Topic{TopicEntries, TopicGossip, TopicAttestations, TopicAnchors, TopicErasure}
}

func validTopic(t Topic) bool {
	for _, known := range Topics() {
		if known == t {
			return true
		}
	}
	return false
}
