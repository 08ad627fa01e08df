package codec

import (
	"bytes"
	"sync"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/protocol"
)

// maxPooledBuffer caps the buffers kept for reuse. A state frame for a full
// table is a few KB; anything far larger is let go instead of pinned.
const maxPooledBuffer = 64 << 10

var (
	// frames read by the client pumps
	messagePool = sync.Pool{
		New: func() any { return &protocol.Message{} },
	}

	// scratch space for Encode
	bufferPool = sync.Pool{
		New: func() any { return new(bytes.Buffer) },
	}
)

func getMessage() *protocol.Message {
	return messagePool.Get().(*protocol.Message)
}

// PutMessage hands a message built by NewMessage or Decode back for reuse.
// The caller must not touch msg, or any payload parsed lazily from it,
// afterwards. Messages queued to several clients are never put back.
func PutMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}
	msg.Type = ""
	msg.Payload = nil
	messagePool.Put(msg)
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBuffer {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
