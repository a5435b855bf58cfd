package websocket

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// ConnSink writes one text frame per stream frame. It implements stream.Sink.
type ConnSink struct {
	conn *websocket.Conn
	once sync.Once
}

func NewConnSink(conn *websocket.Conn) *ConnSink {
	return &ConnSink{conn: conn}
}

func (s *ConnSink) Write(frame []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Close sends a normal closure. The connection itself is released by the
// fiber handler when it returns.
func (s *ConnSink) Close() error {
	var err error
	s.once.Do(func() {
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})
	return err
}
