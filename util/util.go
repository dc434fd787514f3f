package util

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"github.com/json-iterator/go"
	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// 解析json字符串
func ParseJson(data string, result interface{}) error {
	return json.Unmarshal([]byte(data), result)
}

// json转字符串
func StringifyJson(data interface{}) string {
	b, _ := json.Marshal(&data)
	return string(b)
}

// 解析json bytes
func ParseJsonFromBytes(data []byte, result interface{}) error {
	return json.Unmarshal(data, result)
}

// json bytes转字符串
func StringifyJsonToBytes(data interface{}) []byte {
	b, _ := json.Marshal(&data)
	return b
}

func StringifyJsonToBytesWithErr(data interface{}) ([]byte, error) {
	return json.Marshal(&data)
}

// RandANum returns a uniform number in [0, limit) read from crypto/rand.
// rand.Int rejects out of range samples, so there is no modulo bias.
func RandANum(limit int) int {
	if limit <= 1 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		log.L.Error("read rand bytes failed", zap.Int("limit", limit), zap.Error(err))
		return 0
	}
	return int(n.Int64())
}

// CryptoSource adapts RandANum to the Intn shape used by deck shuffling.
type CryptoSource struct{}

func (CryptoSource) Intn(n int) int {
	return RandANum(n)
}

const roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandRoomCode builds a human friendly code without 0/O and 1/I look-alikes.
func RandRoomCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = roomCodeChars[RandANum(len(roomCodeChars))]
	}
	return string(b)
}

// RandID returns a random hex id of 2*byteLen chars.
func RandID(byteLen int) string {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		log.L.Error("read rand id failed", zap.Error(err))
	}
	return hex.EncodeToString(b)
}
