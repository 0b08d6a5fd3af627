package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/recallkit/recall/core"
)

// Key prefixes for the persisted collections
const (
	knowledgePrefix    = "knowent"
	conversationPrefix = "convlog"
	conversationIDSeq  = "convlogseq"
	excellentPrefix    = "convexc"
	blockedPrefix      = "convblk"
)

// makeKnowledgeKey generates a key for a knowledge entry by ID.
// Entry IDs embed their creation time, so lexicographic key order follows
// insertion order.
func makeKnowledgeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", knowledgePrefix, id))
}

// makeConversationKey generates a key for a conversation log entry.
// The sequence ID is written BigEndian so lexicographic iteration returns
// entries in append order.
func makeConversationKey(id core.ID) []byte {
	return makeNumericKey(conversationPrefix, id)
}

// makeExcellentKey generates a key for an excellent observation,
// content-addressed by the normalized question text.
func makeExcellentKey(id core.ID) []byte {
	return makeNumericKey(excellentPrefix, id)
}

// makeBlockedKey generates a key for a blocked observation,
// content-addressed by the answer text.
func makeBlockedKey(id core.ID) []byte {
	return makeNumericKey(blockedPrefix, id)
}

func makeNumericKey(prefix string, id core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
