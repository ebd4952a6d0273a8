package api

import (
	"errors"
	"fmt"
	"net"

	"github.com/cooldogedev/prism/api/packet"
)

var (
	// ErrConnectionFailed is returned by Dial when the server refused the connection.
	ErrConnectionFailed = errors.New("connection failed")
	// ErrUnauthorized is returned by Dial when the server rejected the token.
	ErrUnauthorized = errors.New("connection unauthorized")
)

// Dial establishes a TCP connection to the specified API service address using the provided token.
// It returns a new Client instance if the connection and authentication are successful.
// Otherwise, it returns an error indicating the failure reason.
func Dial(addr, token string) (c *Client, err error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	c = NewClient(conn, packet.NewPool())
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	if err := c.WritePacket(&packet.ConnectionRequest{Token: token}); err != nil {
		return nil, err
	}

	pk, err := c.ReadPacket()
	if err != nil {
		return nil, err
	}

	connectionResponse, ok := pk.(*packet.ConnectionResponse)
	if !ok {
		return nil, fmt.Errorf("expected connection response, got %d", pk.ID())
	}

	switch connectionResponse.Response {
	case packet.ResponseSuccess:
		return c, nil
	case packet.ResponseFail:
		return nil, ErrConnectionFailed
	case packet.ResponseUnauthorized:
		return nil, ErrUnauthorized
	}
	return nil, fmt.Errorf("received an unknown response code %d", connectionResponse.Response)
}
