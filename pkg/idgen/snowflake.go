package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// 雪花 ID：41 位毫秒时间戳 + 10 位节点号 + 12 位序列号
// 起始时间 2024-01-01 00:00:00 UTC

const epochMillis = int64(1704067200000)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeErr  error
)

// Init 初始化节点号（0-1023），多实例部署时每个实例不同
func Init(nodeID int64) error {
	nodeOnce.Do(func() {
		snowflake.Epoch = epochMillis
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	return nodeErr
}

// NextID 生成下一个ID，未调用 Init 时按节点 1 初始化
func NextID() int64 {
	if err := Init(1); err != nil {
		panic(fmt.Sprintf("初始化ID生成器失败: %v", err))
	}
	return node.Generate().Int64()
}

// GenerateTransactionNo 生成流水号
// 格式：TXN + 年月日时分秒 + 雪花ID后8位，例如 TXN2024011514305212345678
func GenerateTransactionNo(now time.Time) string {
	return fmt.Sprintf("TXN%s%08d", now.Format("20060102150405"), NextID()%100000000)
}

// GenerateReportKey 日报消息 key，同一天重复生成时相同
func GenerateReportKey(businessDate string) string {
	return fmt.Sprintf("RPT%s", businessDate)
}
