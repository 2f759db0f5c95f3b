package protocol

import (
	"fmt"
)

// ========== 辅助构造方法 ==========

func newPacket(t MessageType, m message) *Packet {
	return &Packet{Type: t, Payload: m.appendTo(nil)}
}

// NewClientInputPacket 构造单帧输入消息包
func NewClientInputPacket(seq int32, frameID int32, up, down, left, right, bomb bool) *Packet {
	inputs := []InputData{{
		FrameID: frameID,
		Up:      up,
		Down:    down,
		Left:    left,
		Right:   right,
		Bomb:    bomb,
	}}
	return NewClientInputPacketWithInputs(seq, inputs)
}

// NewClientInputPacketWithInputs 构造批量输入消息包
func NewClientInputPacketWithInputs(seq int32, inputs []InputData) *Packet {
	return newPacket(MessageTypeClientInput, &ClientInput{Seq: seq, Inputs: inputs})
}

// NewJoinRequestPacket 构造加入请求消息包
func NewJoinRequestPacket(playerName string) *Packet {
	return newPacket(MessageTypeJoinRequest, &JoinRequest{PlayerName: playerName})
}

// NewJoinResponsePacket 构造加入响应消息包
func NewJoinResponsePacket(resp *JoinResponse) *Packet {
	return newPacket(MessageTypeJoinResponse, resp)
}

// NewJoinFailedPacket 构造加入失败消息包
func NewJoinFailedPacket(reason string) *Packet {
	return NewJoinResponsePacket(&JoinResponse{Success: false, ErrorMessage: reason})
}

// NewGameStatePacket 构造状态广播消息包
func NewGameStatePacket(state *GameState) *Packet {
	return newPacket(MessageTypeGameState, state)
}

// NewGameEventPacket 构造事件消息包
func NewGameEventPacket(event *GameEvent) *Packet {
	return newPacket(MessageTypeGameEvent, event)
}

// NewGameOverPacket 构造对局结束消息包
func NewGameOverPacket(winnerID, frameID int32) *Packet {
	return newPacket(MessageTypeGameOver, &GameOver{WinnerID: winnerID, FrameID: frameID})
}

// NewPingPacket 构造心跳请求
func NewPingPacket(clientTime int64) *Packet {
	return newPacket(MessageTypePing, &Ping{ClientTime: clientTime})
}

// NewPongPacket 构造心跳响应
func NewPongPacket(clientTime, serverTime int64, serverFrame int32) *Packet {
	return newPacket(MessageTypePong, &Pong{
		ClientTime:  clientTime,
		ServerTime:  serverTime,
		ServerFrame: serverFrame,
	})
}

// NewReconnectRequestPacket 构造重连请求
func NewReconnectRequestPacket(sessionToken string) *Packet {
	return newPacket(MessageTypeReconnectRequest, &ReconnectRequest{SessionToken: sessionToken})
}

// NewReconnectResponsePacket 构造重连响应
func NewReconnectResponsePacket(success bool, errorMessage string, playerID int32, state *GameState) *Packet {
	return newPacket(MessageTypeReconnectResponse, &ReconnectResponse{
		Success:      success,
		ErrorMessage: errorMessage,
		PlayerID:     playerID,
		State:        state,
	})
}

// ========== 序列化 ==========

// MarshalPacket 序列化数据包
func MarshalPacket(packet *Packet) ([]byte, error) {
	if packet == nil {
		return nil, fmt.Errorf("protocol: nil packet")
	}
	if !packet.Type.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, packet.Type)
	}
	return packet.appendTo(nil), nil
}

// UnmarshalPacket 反序列化数据包
func UnmarshalPacket(data []byte) (*Packet, error) {
	packet := &Packet{}
	if err := packet.Unmarshal(data); err != nil {
		return nil, err
	}
	if !packet.Type.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, packet.Type)
	}
	return packet, nil
}

// Encode 构造并序列化，失败只可能来自未知类型
func Encode(packet *Packet) []byte {
	data, _ := MarshalPacket(packet)
	return data
}

// ========== 解析方法 ==========

func parse(packet *Packet, want MessageType, dst interface{ Unmarshal([]byte) error }) error {
	if packet == nil {
		return fmt.Errorf("protocol: nil packet")
	}
	if packet.Type != want {
		return fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, want, packet.Type)
	}
	if err := dst.Unmarshal(packet.Payload); err != nil {
		return fmt.Errorf("parse %s: %w", want, err)
	}
	return nil
}

// ParseJoinRequest 解析加入请求
func ParseJoinRequest(packet *Packet) (*JoinRequest, error) {
	msg := &JoinRequest{}
	if err := parse(packet, MessageTypeJoinRequest, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParseJoinResponse 解析加入响应
func ParseJoinResponse(packet *Packet) (*JoinResponse, error) {
	msg := &JoinResponse{}
	if err := parse(packet, MessageTypeJoinResponse, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParseClientInput 解析客户端输入
func ParseClientInput(packet *Packet) (*ClientInput, error) {
	msg := &ClientInput{}
	if err := parse(packet, MessageTypeClientInput, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParseGameState 解析状态广播
func ParseGameState(packet *Packet) (*GameState, error) {
	msg := &GameState{}
	if err := parse(packet, MessageTypeGameState, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParseGameEvent 解析事件
func ParseGameEvent(packet *Packet) (*GameEvent, error) {
	msg := &GameEvent{}
	if err := parse(packet, MessageTypeGameEvent, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParseGameOver 解析对局结束
func ParseGameOver(packet *Packet) (*GameOver, error) {
	msg := &GameOver{}
	if err := parse(packet, MessageTypeGameOver, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParsePing 解析心跳请求
func ParsePing(packet *Packet) (*Ping, error) {
	msg := &Ping{}
	if err := parse(packet, MessageTypePing, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParsePong 解析心跳响应
func ParsePong(packet *Packet) (*Pong, error) {
	msg := &Pong{}
	if err := parse(packet, MessageTypePong, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParseReconnectRequest 解析重连请求
func ParseReconnectRequest(packet *Packet) (*ReconnectRequest, error) {
	msg := &ReconnectRequest{}
	if err := parse(packet, MessageTypeReconnectRequest, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ParseReconnectResponse 解析重连响应
func ParseReconnectResponse(packet *Packet) (*ReconnectResponse, error) {
	msg := &ReconnectResponse{}
	if err := parse(packet, MessageTypeReconnectResponse, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
