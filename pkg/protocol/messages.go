package protocol

// 消息字段编号与 api/proto/bombhazard/v1/game.proto 保持一致

// MessageType 数据包类型
type MessageType int32

const (
	MessageTypeUnspecified MessageType = iota
	MessageTypeJoinRequest
	MessageTypeJoinResponse
	MessageTypeClientInput
	MessageTypeGameState
	MessageTypeGameEvent
	MessageTypeGameOver
	MessageTypePing
	MessageTypePong
	MessageTypeReconnectRequest
	MessageTypeReconnectResponse
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeJoinRequest:
		return "JoinRequest"
	case MessageTypeJoinResponse:
		return "JoinResponse"
	case MessageTypeClientInput:
		return "ClientInput"
	case MessageTypeGameState:
		return "GameState"
	case MessageTypeGameEvent:
		return "GameEvent"
	case MessageTypeGameOver:
		return "GameOver"
	case MessageTypePing:
		return "Ping"
	case MessageTypePong:
		return "Pong"
	case MessageTypeReconnectRequest:
		return "ReconnectRequest"
	case MessageTypeReconnectResponse:
		return "ReconnectResponse"
	}
	return "Unspecified"
}

// Valid 是否是已知类型
func (t MessageType) Valid() bool {
	return t > MessageTypeUnspecified && t <= MessageTypeReconnectResponse
}

// Direction 线上方向枚举，0 表示未指定
type Direction int32

const (
	DirectionUnspecified Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

// Packet 外层数据包
type Packet struct {
	Type    MessageType
	Payload []byte
}

func (m *Packet) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, int32(m.Type))
	return appendBytes(b, 2, m.Payload)
}

func (m *Packet) Unmarshal(b []byte) error {
	*m = Packet{}
	return consumeFields(b, func(f field) error {
		switch {
		case f.num == 1 && f.isVarint():
			m.Type = MessageType(f.int32())
		case f.num == 2 && f.isBytes():
			m.Payload = append([]byte(nil), f.bytes...)
		}
		return nil
	})
}

// JoinRequest 客户端请求加入房间
type JoinRequest struct {
	PlayerName string
}

func (m *JoinRequest) appendTo(b []byte) []byte {
	return appendString(b, 1, m.PlayerName)
}

func (m *JoinRequest) Unmarshal(b []byte) error {
	*m = JoinRequest{}
	return consumeFields(b, func(f field) error {
		if f.num == 1 && f.isBytes() {
			m.PlayerName = f.string()
		}
		return nil
	})
}

// JoinResponse 加入结果，成功时带会话令牌和地图参数
type JoinResponse struct {
	Success      bool
	PlayerID     int32
	ErrorMessage string
	SessionToken string
	Rows         int32
	Columns      int32
	TPS          int32
	Seed         int64
	Character    int32
}

func (m *JoinResponse) appendTo(b []byte) []byte {
	b = appendBool(b, 1, m.Success)
	b = appendInt32(b, 2, m.PlayerID)
	b = appendString(b, 3, m.ErrorMessage)
	b = appendString(b, 4, m.SessionToken)
	b = appendInt32(b, 5, m.Rows)
	b = appendInt32(b, 6, m.Columns)
	b = appendInt32(b, 7, m.TPS)
	b = appendInt64(b, 8, m.Seed)
	return appendInt32(b, 9, m.Character)
}

func (m *JoinResponse) Unmarshal(b []byte) error {
	*m = JoinResponse{}
	return consumeFields(b, func(f field) error {
		if f.isBytes() {
			switch f.num {
			case 3:
				m.ErrorMessage = f.string()
			case 4:
				m.SessionToken = f.string()
			}
			return nil
		}
		if !f.isVarint() {
			return nil
		}
		switch f.num {
		case 1:
			m.Success = f.bool()
		case 2:
			m.PlayerID = f.int32()
		case 5:
			m.Rows = f.int32()
		case 6:
			m.Columns = f.int32()
		case 7:
			m.TPS = f.int32()
		case 8:
			m.Seed = f.int64()
		case 9:
			m.Character = f.int32()
		}
		return nil
	})
}

// InputData 单帧输入
type InputData struct {
	FrameID int32
	Up      bool
	Down    bool
	Left    bool
	Right   bool
	Bomb    bool
}

func (m *InputData) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.FrameID)
	b = appendBool(b, 2, m.Up)
	b = appendBool(b, 3, m.Down)
	b = appendBool(b, 4, m.Left)
	b = appendBool(b, 5, m.Right)
	return appendBool(b, 6, m.Bomb)
}

func (m *InputData) Unmarshal(b []byte) error {
	*m = InputData{}
	return consumeFields(b, func(f field) error {
		if !f.isVarint() {
			return nil
		}
		switch f.num {
		case 1:
			m.FrameID = f.int32()
		case 2:
			m.Up = f.bool()
		case 3:
			m.Down = f.bool()
		case 4:
			m.Left = f.bool()
		case 5:
			m.Right = f.bool()
		case 6:
			m.Bomb = f.bool()
		}
		return nil
	})
}

// ClientInput 一批客户端输入
type ClientInput struct {
	Seq    int32
	Inputs []InputData
}

func (m *ClientInput) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.Seq)
	for i := range m.Inputs {
		b = appendMessage(b, 2, &m.Inputs[i])
	}
	return b
}

func (m *ClientInput) Unmarshal(b []byte) error {
	*m = ClientInput{}
	return consumeFields(b, func(f field) error {
		switch {
		case f.num == 1 && f.isVarint():
			m.Seq = f.int32()
		case f.num == 2 && f.isBytes():
			var in InputData
			if err := in.Unmarshal(f.bytes); err != nil {
				return err
			}
			m.Inputs = append(m.Inputs, in)
		}
		return nil
	})
}

// Position 格子坐标
type Position struct {
	Y int32
	X int32
}

func (m *Position) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.Y)
	return appendInt32(b, 2, m.X)
}

func (m *Position) Unmarshal(b []byte) error {
	*m = Position{}
	return consumeFields(b, func(f field) error {
		if !f.isVarint() {
			return nil
		}
		switch f.num {
		case 1:
			m.Y = f.int32()
		case 2:
			m.X = f.int32()
		}
		return nil
	})
}

func unmarshalPositions(dst *[]Position, b []byte) error {
	var p Position
	if err := p.Unmarshal(b); err != nil {
		return err
	}
	*dst = append(*dst, p)
	return nil
}

// PlayerState 玩家状态
type PlayerState struct {
	ID             int32
	Character      int32
	Pos            Position
	Direction      Direction
	Dead           bool
	BombsAvailable int32
	BombRange      int32
	WallHack       bool
	BombPush       bool
	Bot            bool
}

func (m *PlayerState) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.ID)
	b = appendInt32(b, 2, m.Character)
	b = appendMessage(b, 3, &m.Pos)
	b = appendInt32(b, 4, int32(m.Direction))
	b = appendBool(b, 5, m.Dead)
	b = appendInt32(b, 6, m.BombsAvailable)
	b = appendInt32(b, 7, m.BombRange)
	b = appendBool(b, 8, m.WallHack)
	b = appendBool(b, 9, m.BombPush)
	return appendBool(b, 10, m.Bot)
}

func (m *PlayerState) Unmarshal(b []byte) error {
	*m = PlayerState{}
	return consumeFields(b, func(f field) error {
		if f.num == 3 && f.isBytes() {
			return m.Pos.Unmarshal(f.bytes)
		}
		if !f.isVarint() {
			return nil
		}
		switch f.num {
		case 1:
			m.ID = f.int32()
		case 2:
			m.Character = f.int32()
		case 4:
			m.Direction = Direction(f.int32())
		case 5:
			m.Dead = f.bool()
		case 6:
			m.BombsAvailable = f.int32()
		case 7:
			m.BombRange = f.int32()
		case 8:
			m.WallHack = f.bool()
		case 9:
			m.BombPush = f.bool()
		case 10:
			m.Bot = f.bool()
		}
		return nil
	})
}

// BombState 炸弹状态
type BombState struct {
	ID      int32
	Pos     Position
	OwnerID int32
	Range   int32
	FuseMs  int32 // 剩余引线时间
	Moving  bool
}

func (m *BombState) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.ID)
	b = appendMessage(b, 2, &m.Pos)
	b = appendInt32(b, 3, m.OwnerID)
	b = appendInt32(b, 4, m.Range)
	b = appendInt32(b, 5, m.FuseMs)
	return appendBool(b, 6, m.Moving)
}

func (m *BombState) Unmarshal(b []byte) error {
	*m = BombState{}
	return consumeFields(b, func(f field) error {
		if f.num == 2 && f.isBytes() {
			return m.Pos.Unmarshal(f.bytes)
		}
		if !f.isVarint() {
			return nil
		}
		switch f.num {
		case 1:
			m.ID = f.int32()
		case 3:
			m.OwnerID = f.int32()
		case 4:
			m.Range = f.int32()
		case 5:
			m.FuseMs = f.int32()
		case 6:
			m.Moving = f.bool()
		}
		return nil
	})
}

// ItemState 道具状态
type ItemState struct {
	ID   int32
	Pos  Position
	Type int32
}

func (m *ItemState) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.ID)
	b = appendMessage(b, 2, &m.Pos)
	return appendInt32(b, 3, m.Type)
}

func (m *ItemState) Unmarshal(b []byte) error {
	*m = ItemState{}
	return consumeFields(b, func(f field) error {
		switch {
		case f.num == 1 && f.isVarint():
			m.ID = f.int32()
		case f.num == 2 && f.isBytes():
			return m.Pos.Unmarshal(f.bytes)
		case f.num == 3 && f.isVarint():
			m.Type = f.int32()
		}
		return nil
	})
}

// WallOfDeathState 死亡之墙状态
type WallOfDeathState struct {
	State       int32 // 0 休眠，1 推进中，2 结束
	Pos         Position
	Direction   Direction
	RemainingMs int64 // 休眠剩余时间
}

func (m *WallOfDeathState) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.State)
	b = appendMessage(b, 2, &m.Pos)
	b = appendInt32(b, 3, int32(m.Direction))
	return appendInt64(b, 4, m.RemainingMs)
}

func (m *WallOfDeathState) Unmarshal(b []byte) error {
	*m = WallOfDeathState{}
	return consumeFields(b, func(f field) error {
		switch {
		case f.num == 1 && f.isVarint():
			m.State = f.int32()
		case f.num == 2 && f.isBytes():
			return m.Pos.Unmarshal(f.bytes)
		case f.num == 3 && f.isVarint():
			m.Direction = Direction(f.int32())
		case f.num == 4 && f.isVarint():
			m.RemainingMs = f.int64()
		}
		return nil
	})
}

// GameState 每帧广播的完整状态
type GameState struct {
	FrameID     int32
	Players     []PlayerState
	Bombs       []BombState
	Fires       []Position
	Bricks      []Position
	Walls       []Position
	Items       []ItemState
	WallOfDeath *WallOfDeathState
	RemainingMs int64
	Crumbling   []Position
}

func (m *GameState) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.FrameID)
	for i := range m.Players {
		b = appendMessage(b, 2, &m.Players[i])
	}
	for i := range m.Bombs {
		b = appendMessage(b, 3, &m.Bombs[i])
	}
	for i := range m.Fires {
		b = appendMessage(b, 4, &m.Fires[i])
	}
	for i := range m.Bricks {
		b = appendMessage(b, 5, &m.Bricks[i])
	}
	for i := range m.Walls {
		b = appendMessage(b, 6, &m.Walls[i])
	}
	for i := range m.Items {
		b = appendMessage(b, 7, &m.Items[i])
	}
	if m.WallOfDeath != nil {
		b = appendMessage(b, 8, m.WallOfDeath)
	}
	b = appendInt64(b, 9, m.RemainingMs)
	for i := range m.Crumbling {
		b = appendMessage(b, 10, &m.Crumbling[i])
	}
	return b
}

func (m *GameState) Unmarshal(b []byte) error {
	*m = GameState{}
	return consumeFields(b, func(f field) error {
		if f.isVarint() {
			switch f.num {
			case 1:
				m.FrameID = f.int32()
			case 9:
				m.RemainingMs = f.int64()
			}
			return nil
		}
		if !f.isBytes() {
			return nil
		}
		switch f.num {
		case 2:
			var p PlayerState
			if err := p.Unmarshal(f.bytes); err != nil {
				return err
			}
			m.Players = append(m.Players, p)
		case 3:
			var bomb BombState
			if err := bomb.Unmarshal(f.bytes); err != nil {
				return err
			}
			m.Bombs = append(m.Bombs, bomb)
		case 4:
			return unmarshalPositions(&m.Fires, f.bytes)
		case 5:
			return unmarshalPositions(&m.Bricks, f.bytes)
		case 6:
			return unmarshalPositions(&m.Walls, f.bytes)
		case 7:
			var item ItemState
			if err := item.Unmarshal(f.bytes); err != nil {
				return err
			}
			m.Items = append(m.Items, item)
		case 8:
			m.WallOfDeath = &WallOfDeathState{}
			return m.WallOfDeath.Unmarshal(f.bytes)
		case 10:
			return unmarshalPositions(&m.Crumbling, f.bytes)
		}
		return nil
	})
}

// GameEvent 对局中的单个事件
type GameEvent struct {
	FrameID  int32
	Kind     int32
	Pos      Position
	PlayerID int32
	Item     int32
	Cause    int32
}

func (m *GameEvent) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.FrameID)
	b = appendInt32(b, 2, m.Kind)
	b = appendMessage(b, 3, &m.Pos)
	b = appendInt32(b, 4, m.PlayerID)
	b = appendInt32(b, 5, m.Item)
	return appendInt32(b, 6, m.Cause)
}

func (m *GameEvent) Unmarshal(b []byte) error {
	*m = GameEvent{}
	return consumeFields(b, func(f field) error {
		if f.num == 3 && f.isBytes() {
			return m.Pos.Unmarshal(f.bytes)
		}
		if !f.isVarint() {
			return nil
		}
		switch f.num {
		case 1:
			m.FrameID = f.int32()
		case 2:
			m.Kind = f.int32()
		case 4:
			m.PlayerID = f.int32()
		case 5:
			m.Item = f.int32()
		case 6:
			m.Cause = f.int32()
		}
		return nil
	})
}

// GameOver 对局结束，WinnerID 为 -1 表示平局
type GameOver struct {
	WinnerID int32
	FrameID  int32
}

func (m *GameOver) appendTo(b []byte) []byte {
	b = appendInt32(b, 1, m.WinnerID)
	return appendInt32(b, 2, m.FrameID)
}

func (m *GameOver) Unmarshal(b []byte) error {
	*m = GameOver{}
	return consumeFields(b, func(f field) error {
		if !f.isVarint() {
			return nil
		}
		switch f.num {
		case 1:
			m.WinnerID = f.int32()
		case 2:
			m.FrameID = f.int32()
		}
		return nil
	})
}

// Ping 心跳请求
type Ping struct {
	ClientTime int64
}

func (m *Ping) appendTo(b []byte) []byte {
	return appendInt64(b, 1, m.ClientTime)
}

func (m *Ping) Unmarshal(b []byte) error {
	*m = Ping{}
	return consumeFields(b, func(f field) error {
		if f.num == 1 && f.isVarint() {
			m.ClientTime = f.int64()
		}
		return nil
	})
}

// Pong 心跳响应
type Pong struct {
	ClientTime  int64
	ServerTime  int64
	ServerFrame int32
}

func (m *Pong) appendTo(b []byte) []byte {
	b = appendInt64(b, 1, m.ClientTime)
	b = appendInt64(b, 2, m.ServerTime)
	return appendInt32(b, 3, m.ServerFrame)
}

func (m *Pong) Unmarshal(b []byte) error {
	*m = Pong{}
	return consumeFields(b, func(f field) error {
		if !f.isVarint() {
			return nil
		}
		switch f.num {
		case 1:
			m.ClientTime = f.int64()
		case 2:
			m.ServerTime = f.int64()
		case 3:
			m.ServerFrame = f.int32()
		}
		return nil
	})
}

// ReconnectRequest 断线重连请求
type ReconnectRequest struct {
	SessionToken string
}

func (m *ReconnectRequest) appendTo(b []byte) []byte {
	return appendString(b, 1, m.SessionToken)
}

func (m *ReconnectRequest) Unmarshal(b []byte) error {
	*m = ReconnectRequest{}
	return consumeFields(b, func(f field) error {
		if f.num == 1 && f.isBytes() {
			m.SessionToken = f.string()
		}
		return nil
	})
}

// ReconnectResponse 重连结果，成功时附带当前状态
type ReconnectResponse struct {
	Success      bool
	ErrorMessage string
	PlayerID     int32
	State        *GameState
}

func (m *ReconnectResponse) appendTo(b []byte) []byte {
	b = appendBool(b, 1, m.Success)
	b = appendString(b, 2, m.ErrorMessage)
	b = appendInt32(b, 3, m.PlayerID)
	if m.State != nil {
		b = appendMessage(b, 4, m.State)
	}
	return b
}

func (m *ReconnectResponse) Unmarshal(b []byte) error {
	*m = ReconnectResponse{}
	return consumeFields(b, func(f field) error {
		switch {
		case f.num == 1 && f.isVarint():
			m.Success = f.bool()
		case f.num == 2 && f.isBytes():
			m.ErrorMessage = f.string()
		case f.num == 3 && f.isVarint():
			m.PlayerID = f.int32()
		case f.num == 4 && f.isBytes():
			m.State = &GameState{}
			return m.State.Unmarshal(f.bytes)
		}
		return nil
	})
}
