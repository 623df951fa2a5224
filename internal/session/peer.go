package session

import (
	"net"

	"github.com/mcoot/rpsarena/internal/model"
	"github.com/mcoot/rpsarena/internal/protocol"
)

// Peer is a live client connection as seen by the session core.
//
// Send must not block on network I/O: implementations enqueue the message for
// a writer goroutine and return an error if it cannot be accepted. The store
// calls Send while holding its lock.
type Peer interface {
	ID() model.PeerID
	RemoteAddr() string
	Send(msg protocol.Message) error
}

// fallbackName derives a placeholder display name from the peer's address
func fallbackName(p Peer) string {
	addr := p.RemoteAddr()
	if _, port, err := net.SplitHostPort(addr); err == nil && port != "" {
		return "Player_" + port
	}
	if addr != "" {
		return "Player_" + addr
	}
	id := string(p.ID())
	if len(id) > 8 {
		id = id[:8]
	}
	return "Player_" + id
}
