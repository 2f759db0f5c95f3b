package server

// Session 房间眼中的一个客户端连接
type Session interface {
	ID() int32
	Send(data []byte) error
	Close()
	CloseWithoutNotify()
	SetPlayerID(id int32)
}
