package search

import (
	"context"
	"time"

	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
	"github.com/meetingtools/fathom-search-mcp/pkg/logger"
	"github.com/meetingtools/fathom-search-mcp/pkg/metrics"
)

// service.go - 搜索管道编排
// plan → fetch → safety → match → shape，单请求内顺序执行到底
// 无跨请求共享可变状态；观测通过可注入的 Hook 上报，核心逻辑没有隐藏副通道

// Event 管道观测事件
type Event struct {
	// Stage plan/aggregate/safety/match/shape
	Stage string
	// RequestID 请求关联 ID（可为空）
	RequestID string
	// Records 该阶段输出的记录数
	Records int
	// Duration 阶段耗时
	Duration time.Duration
	// Err 阶段错误（可为 nil）
	Err error
}

// Hook 观测钩子：每个阶段结束时收到一个结构化事件
type Hook func(Event)

// LoggerHook 返回把事件写入全局 slog 的默认钩子
func LoggerHook() Hook {
	return func(e Event) {
		code := ""
		if e.Err != nil {
			code = fathom.ErrorCode(e.Err)
		}
		logger.LogSearchStage(logger.L(), e.Stage, e.RequestID, e.Records, e.Duration.Milliseconds(), code)
	}
}

// Service 搜索服务：把各组件接成一条管道
type Service struct {
	planner    *Planner
	aggregator *Aggregator
	safety     *SafetyFilter
	shaper     *Shaper
	hook       Hook
}

// NewService 创建搜索服务实例
// 参数:
//   - source: 源端适配器
//   - sourceDescending: 源端按最新在前交付时置 true
//   - hook: 观测钩子，nil 时事件被丢弃
func NewService(source RecordSource, sourceDescending bool, hook Hook) *Service {
	if hook == nil {
		hook = func(Event) {}
	}
	return &Service{
		planner:    &Planner{},
		aggregator: &Aggregator{Source: source},
		safety:     &SafetyFilter{},
		shaper:     &Shaper{SourceDescending: sourceDescending},
		hook:       hook,
	}
}

// Search 执行一次完整搜索
// 错误不会被吞掉：任一阶段失败则整个请求失败，不返回部分结果
// 零匹配是成功（total_found: 0），不是错误
func (s *Service) Search(ctx context.Context, requestID string, req Request) (*Result, error) {
	// 1. 规划
	start := time.Now()
	plan, err := s.planner.BuildPlan(req)
	s.emit("plan", requestID, 0, start, err)
	if err != nil {
		metrics.RecordSearch("invalid_request")
		return nil, err
	}

	// 2. 聚合抓取
	start = time.Now()
	candidates, truncated, err := s.aggregator.Collect(ctx, plan)
	s.emit("aggregate", requestID, len(candidates), start, err)
	if err != nil {
		metrics.RecordSearch(fathom.ErrorCode(err))
		return nil, err
	}
	metrics.RecordRecordsScanned(len(candidates))
	if truncated {
		metrics.RecordAggregationTruncated()
	}

	// 3. 安全过滤（无条件运行）
	start = time.Now()
	survivors := s.safety.Apply(candidates, plan.ExcludeTeams)
	s.emit("safety", requestID, len(survivors), start, nil)

	// 4. 文本匹配
	start = time.Now()
	matches := NewMatcher().Filter(survivors, plan.Residual)
	s.emit("match", requestID, len(matches), start, nil)

	// 5. 整形
	start = time.Now()
	result := s.shaper.Shape(req.SearchTerm, plan, matches, truncated)
	s.emit("shape", requestID, result.Showing, start, nil)

	metrics.RecordSearch("success")
	return result, nil
}

func (s *Service) emit(stage, requestID string, records int, start time.Time, err error) {
	s.hook(Event{
		Stage:     stage,
		RequestID: requestID,
		Records:   records,
		Duration:  time.Since(start),
		Err:       err,
	})
}
