package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/tibkiss/huba-v1/internal/config"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

// sweep.go - параллельный прогон вариантов параметров (parameter sweep)
//
// Каждый вариант получает собственный оркестратор со своим фидом,
// площадкой, аллокатором и приёмником результатов: общего изменяемого
// состояния между воркерами нет. Файлы результатов помечаются
// уникальным тегом (вариант + воркер + момент запуска), поэтому
// записи разных вариантов никогда не перемешиваются.

// SweepVariant - одна точка решётки параметров
type SweepVariant struct {
	Name      string // имя варианта для тега и логов
	RunConfig *config.RunConfig
}

// SinkFactory создаёт приёмник результатов для тега варианта.
// Возвращает приёмник и функцию закрытия.
type SinkFactory func(tag string) (ResultSink, func() error, error)

// AgentFactory собирает оркестратор для одного варианта.
// Каждый вызов обязан вернуть полностью независимый экземпляр.
type AgentFactory func(variant SweepVariant, sink ResultSink) (*Agent, error)

// SweepResult - итог прогона одного варианта
type SweepResult struct {
	Variant  string
	Tag      string
	Err      error
	Duration time.Duration
}

// RunSweep прогоняет все варианты на пуле воркеров и возвращает
// результаты в порядке вариантов. Ошибка одного варианта не
// останавливает остальные.
func RunSweep(variants []SweepVariant, workers int,
	newSink SinkFactory, newAgent AgentFactory, log *utils.Logger) []SweepResult {

	if workers < 1 {
		workers = 1
	}
	if workers > len(variants) {
		workers = len(variants)
	}
	log = log.WithComponent("sweep")
	stamp := time.Now().Format("20060102T150405")

	log.Info("Sweep started",
		utils.Int("variants", len(variants)), utils.Int("workers", workers))

	results := make([]SweepResult, len(variants))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := range jobs {
				tag := fmt.Sprintf("%s-w%d-%s", variants[i].Name, worker, stamp)
				results[i] = runVariant(variants[i], tag, newSink, newAgent, log)
			}
		}(w)
	}

	for i := range variants {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("Sweep finished",
		utils.Int("variants", len(variants)), utils.Int("failed", failed))

	return results
}

// runVariant прогоняет один вариант от сборки до закрытия приёмника
func runVariant(v SweepVariant, tag string,
	newSink SinkFactory, newAgent AgentFactory, log *utils.Logger) SweepResult {

	result := SweepResult{Variant: v.Name, Tag: tag}
	start := time.Now()

	sink, closeSink, err := newSink(tag)
	if err != nil {
		result.Err = fmt.Errorf("create sink: %w", err)
		return result
	}
	defer func() {
		if err := closeSink(); err != nil {
			log.Error("Failed to close result sink",
				utils.String("tag", tag), utils.Err(err))
		}
	}()

	agent, err := newAgent(v, sink)
	if err != nil {
		result.Err = fmt.Errorf("build agent: %w", err)
		return result
	}

	log.Info("Sweep variant started", utils.String("tag", tag))
	if err := agent.Run(); err != nil {
		result.Err = err
	}

	result.Duration = time.Since(start)
	log.Info("Sweep variant finished",
		utils.String("tag", tag),
		utils.String("duration", result.Duration.Round(time.Millisecond).String()),
		utils.Err(result.Err))

	return result
}
