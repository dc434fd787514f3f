package abstracts

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/util"
)

func jsonKeys(t *testing.T, v interface{}) []string {
	var m map[string]interface{}
	require.NoError(t, util.ParseJsonFromBytes(util.StringifyJsonToBytes(v), &m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// 发给客户端的字段统一用驼峰
func TestPayloadKeysCamelCase(t *testing.T) {
	assert.Equal(t, []string{ "actionType", "cardIndex", "source" }, jsonKeys(t, PlayerActionMsg{ MsgID: 3, UserID: "u" }))
	assert.Equal(t, []string{ "roomCode" }, jsonKeys(t, JoinRoomReq{ RoomCode: "ABCD" }))
	assert.Equal(t, []string{ "cardCount", "coins", "id", "name", "score" }, jsonKeys(t, PlayerInfo{}))
	assert.Equal(t, []string{ "players", "roomCode", "you" }, jsonKeys(t, RoomJoinedResp{}))

	notice := PlayerActionNotice{
		PlayerID: "1", PlayerName: "p1", Action: "discard",
		DrawnCard: &CardScene{ Suit: "hearts", Value: "K" },
		DiscardedCard: &CardScene{ Suit: "spades", Value: "2" },
		Recycled: true,
	}
	assert.Equal(t, []string{ "action", "discardedCard", "drawnCard", "playerId", "playerName", "recycled" }, jsonKeys(t, notice))

	var req PlayerActionMsg
	require.NoError(t, util.ParseJsonFromBytes([]byte(`{"actionType":1,"cardIndex":2}`), &req))
	assert.Equal(t, GameActionOfDiscard, req.ActionType)
	assert.Equal(t, 2, req.CardIndex)
}
