package server

import (
	"fmt"

	"bombhazard/pkg/core"
	"bombhazard/pkg/protocol"
)

// DecodePacket 解析服务器收到的数据包
func DecodePacket(data []byte) (*ServerEvent, error) {
	pkt, err := protocol.UnmarshalPacket(data)
	if err != nil {
		return nil, fmt.Errorf("解析包失败: %w", err)
	}

	switch pkt.Type {
	case protocol.MessageTypeJoinRequest:
		req, err := protocol.ParseJoinRequest(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventJoin,
			Join: &JoinEvent{PlayerName: req.PlayerName},
		}, nil

	case protocol.MessageTypeClientInput:
		input, err := protocol.ParseClientInput(pkt)
		if err != nil {
			return nil, err
		}
		items := make([]core.Input, 0, len(input.Inputs))
		for _, in := range input.Inputs {
			items = append(items, protocol.ProtoInputToCore(in))
		}
		return &ServerEvent{
			Kind: EventInput,
			Input: &InputEvent{
				Seq:    input.Seq,
				Inputs: items,
			},
		}, nil

	case protocol.MessageTypePing:
		ping, err := protocol.ParsePing(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventPing,
			Ping: &PingEvent{ClientTime: ping.ClientTime},
		}, nil

	case protocol.MessageTypePong:
		pong, err := protocol.ParsePong(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind: EventPong,
			Pong: &PongEvent{ClientTime: pong.ClientTime, ServerTime: pong.ServerTime, ServerFrame: pong.ServerFrame},
		}, nil

	case protocol.MessageTypeReconnectRequest:
		req, err := protocol.ParseReconnectRequest(pkt)
		if err != nil {
			return nil, err
		}
		return &ServerEvent{
			Kind:      EventReconnect,
			Reconnect: &ReconnectEvent{SessionToken: req.SessionToken},
		}, nil

	default:
		// 服务器只接收客户端方向的消息
		return &ServerEvent{Kind: EventUnknown}, nil
	}
}
