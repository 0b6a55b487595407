package main

import (
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/gobwas/ws/wsutil"
	"golang.org/x/time/rate"

	"kidgames-ws/wire"
)

var (
	ErrNoHandshake = errors.New("missing hello handshake")
	ErrUnknownGame = errors.New("unknown game")
)

// Client is one WebSocket connection. The room binding fields are owned
// by the host's event loop; the read pump only forwards raw messages.
type Client struct {
	conn    net.Conn
	remote  string
	limiter *rate.Limiter
	writeMu sync.Mutex

	room     *room
	playerID int
}

func NewClient(conn net.Conn, remote string) *Client {
	return &Client{
		conn:    conn,
		remote:  remote,
		limiter: rate.NewLimiter(rate.Limit(100), 200),
	}
}

// send write errors are swallowed; a dead connection surfaces in the
// read pump and tears the client down there.
func (c *Client) send(payload []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	wsutil.WriteServerText(c.conn, payload)
}

func (c *Client) sendJSON(msg any) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.send(encoded)
}

// handshake reads the first frame, which must be hello{gameId}, and
// resolves the host for that game. Anything else closes the connection.
func (c *Client) handshake(server *Server) (*Host, error) {
	msg, err := wsutil.ReadClientText(c.conn)
	if err != nil {
		return nil, err
	}
	if wire.Decode[wire.Envelope](msg).Type != "hello" {
		c.sendJSON(wire.Errorf("Missing hello handshake"))
		return nil, ErrNoHandshake
	}
	hello := wire.Decode[helloMessage](msg)
	host, ok := server.GetHost(hello.GameID)
	if !ok {
		c.sendJSON(wire.Errorf("Unknown game: %s", hello.GameID))
		return nil, ErrUnknownGame
	}
	c.sendJSON(helloAckMessage{Type: "hello_ack", GameID: hello.GameID})
	return host, nil
}

// run drives the connection: handshake, then read frames into the host
// inbox until the peer goes away. Overly chatty clients get frames
// dropped by the token bucket rather than a disconnect.
func (c *Client) run(server *Server) {
	defer c.conn.Close()

	host, err := c.handshake(server)
	if err != nil {
		return
	}
	defer host.Disconnect(c)

	for {
		msg, err := wsutil.ReadClientText(c.conn)
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		msgType := wire.Decode[wire.Envelope](msg).Type
		if msgType == "" {
			c.sendJSON(wire.Errorf("Malformed message"))
			return
		}
		host.Message(c, msgType, msg)
	}
}
