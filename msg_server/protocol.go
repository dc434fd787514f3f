package msg_server

import (
	"encoding/binary"
	"fmt"
	"math"
)

// 前两byte作为type，接着8byte作为msg id，剩下的是json payload
const headerLen = 2 + 8

func WrapMsg(mType int, mID int64, msg []byte) []byte {
	if mType < 0 || mType > math.MaxUint16 {
		panic(fmt.Sprintf("invalid msg type: %v", mType))
	}
	b := make([]byte, headerLen, headerLen + len(msg))
	binary.BigEndian.PutUint16(b[:2], uint16(mType))
	binary.BigEndian.PutUint64(b[2:headerLen], uint64(mID))
	return append(b, msg...)
}

// UnWrapMsg returns -1 as type for frames shorter than the header.
func UnWrapMsg(msg []byte) (int, int64, []byte) {
	if len(msg) < headerLen {
		return -1, -1, []byte{}
	}
	return int(binary.BigEndian.Uint16(msg[:2])), int64(binary.BigEndian.Uint64(msg[2:headerLen])), msg[headerLen:]
}
