package logic

import (
	"testing"
	"time"

	"github.com/SairajMN/autocrowd/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 显式设置CreatedAt，保证按创建时间排序的断言稳定
func seedVerificationRequests(t *testing.T, db *gorm.DB) {
	t.Helper()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := []model.VerificationRequestModel{
		{RequestId: "req-01", CampaignId: 1, MilestoneIndex: 0, Requester: "0xcreator", Attempts: 0, Status: model.VerificationStatusPending},
		{RequestId: "req-02", CampaignId: 1, MilestoneIndex: 1, Requester: "0xcreator", Attempts: 2, Status: model.VerificationStatusDispatched},
		{RequestId: "req-03", CampaignId: 2, MilestoneIndex: 0, Requester: "0xother", Attempts: 3, Status: model.VerificationStatusDispatched},
		{RequestId: "req-04", CampaignId: 2, MilestoneIndex: 1, Requester: "0xother", Attempts: 1, Status: model.VerificationStatusProcessed, IsProcessed: true},
	}
	for i := range rows {
		rows[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}

func TestGetDispatchableRequests(t *testing.T) {
	db := newTestDB(t)
	seedVerificationRequests(t, db)
	l := NewVerificationLogic(db)

	// 超次与已处理的请求都不可派发
	requests, err := l.GetDispatchableRequests(3, 10)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "req-01", requests[0].RequestId)
	assert.Equal(t, "req-02", requests[1].RequestId)

	// limit 截断时保留最早创建的
	requests, err = l.GetDispatchableRequests(3, 1)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "req-01", requests[0].RequestId)
}

func TestGetExhaustedRequests(t *testing.T) {
	db := newTestDB(t)
	seedVerificationRequests(t, db)
	l := NewVerificationLogic(db)

	requests, err := l.GetExhaustedRequests(3, 10)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "req-03", requests[0].RequestId)
	assert.False(t, requests[0].IsProcessed)
}

func TestMarkDispatched(t *testing.T) {
	db := newTestDB(t)
	seedVerificationRequests(t, db)
	l := NewVerificationLogic(db)

	before, err := l.GetByRequestId("req-02")
	require.NoError(t, err)
	require.Equal(t, 2, before.Attempts)

	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, l.MarkDispatched(before.Id, at))

	after, err := l.GetByRequestId("req-02")
	require.NoError(t, err)
	assert.Equal(t, 3, after.Attempts)
	assert.Equal(t, model.VerificationStatusDispatched, after.Status)
	assert.WithinDuration(t, at, after.DispatchedAt, time.Second)

	// 再次派发后进入超次队列
	requests, err := l.GetExhaustedRequests(3, 10)
	require.NoError(t, err)
	assert.Len(t, requests, 2)
}

func TestGetByRequestId(t *testing.T) {
	db := newTestDB(t)
	seedVerificationRequests(t, db)
	l := NewVerificationLogic(db)

	request, err := l.GetByRequestId("req-03")
	require.NoError(t, err)
	assert.Equal(t, int64(2), request.CampaignId)
	assert.Equal(t, 3, request.Attempts)

	_, err = l.GetByRequestId("req-99")
	require.Error(t, err)
	assert.EqualError(t, err, "验证请求不存在")
}

func TestGetRequests(t *testing.T) {
	db := newTestDB(t)
	seedVerificationRequests(t, db)
	l := NewVerificationLogic(db)

	requests, total, err := l.GetRequests(0, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, requests, 4)

	// 按活动过滤
	_, total, err = l.GetRequests(1, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 按状态过滤
	requests, total, err = l.GetRequests(0, "dispatched", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, r := range requests {
		assert.Equal(t, model.VerificationStatusDispatched, r.Status)
	}

	// 组合过滤
	requests, total, err = l.GetRequests(2, "processed", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, requests, 1)
	assert.Equal(t, "req-04", requests[0].RequestId)
}
