package logic

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/SairajMN/autocrowd/internal/model"
	"github.com/SairajMN/autocrowd/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repository.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "logic_test.db"),
	})
	require.NoError(t, err)
	return db
}

func seedContributionRecords(t *testing.T, db *gorm.DB) {
	t.Helper()

	rows := []model.ContributionRecordModel{
		{CampaignId: 1, Address: "0xaaa", Amount: 100},
		{CampaignId: 1, Address: "0xaaa", Amount: 40},
		{CampaignId: 1, Address: "0xbbb", Amount: 200},
		{CampaignId: 2, Address: "0xccc", Amount: 50},
	}
	for i := range rows {
		rows[i].TxHash = fmt.Sprintf("0xtx%02d", i)
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}

func TestGetCampaignContributionRecords(t *testing.T) {
	db := newTestDB(t)
	seedContributionRecords(t, db)
	l := NewContributionRecordLogic(db)

	records, total, err := l.GetCampaignContributionRecords(1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, records, 2)

	records, total, err = l.GetCampaignContributionRecords(1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, records, 1)

	// 其他活动的流水互不掺杂
	records, total, err = l.GetCampaignContributionRecords(2, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, "0xccc", records[0].Address)

	records, total, err = l.GetCampaignContributionRecords(42, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, records)
}

func TestGetAddressContributionRecords(t *testing.T) {
	db := newTestDB(t)
	seedContributionRecords(t, db)
	l := NewContributionRecordLogic(db)

	records, total, err := l.GetAddressContributionRecords("0xaaa", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)

	_, total, err = l.GetAddressContributionRecords("0xnobody", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestGetContributionStats(t *testing.T) {
	db := newTestDB(t)
	seedContributionRecords(t, db)
	l := NewContributionRecordLogic(db)

	stats, err := l.GetContributionStats(1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats["total_records"])
	assert.Equal(t, int64(340), stats["total_amount"])
	assert.Equal(t, int64(2), stats["unique_backers"])
	assert.InDelta(t, 340.0/3.0, stats["average_amount"].(float64), 1e-9)

	// 没有流水的活动统计为零
	stats, err = l.GetContributionStats(42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats["total_records"])
	assert.Equal(t, int64(0), stats["total_amount"])
	assert.Equal(t, float64(0), stats["average_amount"])
}
