package logic

import (
	"testing"
	"time"

	"github.com/SairajMN/autocrowd/internal/event"
	"github.com/SairajMN/autocrowd/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedEvents(t *testing.T, db *gorm.DB) {
	t.Helper()

	rows := []model.EscrowEventModel{
		{EventType: event.TypeCampaignCreated, CampaignId: 1, MilestoneIndex: -1, Address: "0xcreator", Payload: "{}"},
		{EventType: event.TypeContributionRecorded, CampaignId: 1, MilestoneIndex: -1, Address: "0xaaa", Amount: 100, Payload: "{}"},
		{EventType: event.TypeContributionRecorded, CampaignId: 1, MilestoneIndex: -1, Address: "0xbbb", Amount: 200, Payload: "{}"},
		{EventType: event.TypeMilestoneSubmitted, CampaignId: 1, MilestoneIndex: 0, Address: "0xcreator", Payload: "{}"},
		{EventType: event.TypeCampaignCreated, CampaignId: 2, MilestoneIndex: -1, Address: "0xother", Payload: "{}"},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}

func TestGetEvents(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)
	l := NewEventLogic(db)

	// 无过滤条件返回全部
	events, total, err := l.GetEvents(0, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, events, 5)

	// 按活动过滤
	events, total, err = l.GetEvents(1, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, events, 4)

	// 按类型过滤
	events, total, err = l.GetEvents(1, event.TypeContributionRecorded, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, evt := range events {
		assert.Equal(t, event.TypeContributionRecorded, evt.EventType)
	}

	// 分页按 id DESC，最新的在前
	events, _, err = l.GetEvents(1, "", 1, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Greater(t, events[0].Id, events[1].Id)
}

func TestGetEvent(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)
	l := NewEventLogic(db)

	evt, err := l.GetEvent(1)
	require.NoError(t, err)
	assert.Equal(t, event.TypeCampaignCreated, evt.EventType)

	_, err = l.GetEvent(999)
	require.Error(t, err)
	assert.EqualError(t, err, "事实不存在")
}

func TestGetMilestoneEvents(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)
	l := NewEventLogic(db)

	events, total, err := l.GetMilestoneEvents(1, 0, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, events, 1)
	assert.Equal(t, event.TypeMilestoneSubmitted, events[0].EventType)

	// milestone_index=-1 的全局事实不会混进里程碑事实流
	_, total, err = l.GetMilestoneEvents(1, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestGetAddressEvents(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)
	l := NewEventLogic(db)

	events, total, err := l.GetAddressEvents("0xcreator", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 2)
}

func TestGetEventsByTimeRange(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)
	l := NewEventLogic(db)

	now := time.Now()
	events, total, err := l.GetEventsByTimeRange(now.Add(-time.Hour), now.Add(time.Hour), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, events, 5)

	_, total, err = l.GetEventsByTimeRange(now.Add(-2*time.Hour), now.Add(-time.Hour), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestGetEventStatistics(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)
	l := NewEventLogic(db)

	stats, err := l.GetEventStatistics(1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats["total_events"])

	byType, ok := stats["by_type"].(map[string]int64)
	require.True(t, ok)
	assert.Equal(t, int64(1), byType[event.TypeCampaignCreated])
	assert.Equal(t, int64(2), byType[event.TypeContributionRecorded])
	assert.Equal(t, int64(1), byType[event.TypeMilestoneSubmitted])

	// campaignId=0 统计全库
	stats, err = l.GetEventStatistics(0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats["total_events"])
}
