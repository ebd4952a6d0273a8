package util

import (
	"fmt"
	"strings"

	proto "github.com/cooldogedev/prism/protocol"
	"github.com/sandertv/gophertunnel/minecraft"
)

type StatusProvider struct {
	serverName    string
	serverSubName string
}

func NewStatusProvider(serverName string, serverSubName string) *StatusProvider {
	return &StatusProvider{serverName: serverName, serverSubName: serverSubName}
}

func (s *StatusProvider) ServerStatus(playerCount int, maxPlayers int) minecraft.ServerStatus {
	return minecraft.ServerStatus{
		ServerName:    s.serverName,
		ServerSubName: s.serverSubName,
		PlayerCount:   playerCount,
		MaxPlayers:    maxPlayers,
	}
}

// PongData formats status as the payload of a RakNet unconnected pong. The server advertises the latest
// version it supports.
func PongData(status minecraft.ServerStatus, guid int64, port int) []byte {
	return []byte(strings.Join([]string{
		"MCPE",
		sanitise(status.ServerName),
		fmt.Sprint(int32(proto.Latest)),
		proto.Latest.String(),
		fmt.Sprint(status.PlayerCount),
		fmt.Sprint(status.MaxPlayers),
		fmt.Sprint(guid),
		sanitise(status.ServerSubName),
		"Survival",
		"1",
		fmt.Sprint(port),
		fmt.Sprint(port),
		"",
	}, ";"))
}

func sanitise(s string) string {
	return strings.ReplaceAll(s, ";", "")
}
