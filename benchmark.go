package main

import (
	"flag"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	benchmarkCount = flag.Int("benchmark.count", 1000, "the random plan count for benchmark")
	benchmarkSeed  = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU   = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
)

// runBenchmark answers benchmark.count plans for random budgets and
// reports throughput. Budgets run one past exhaustion to also exercise
// the unsatisfiable case.
func runBenchmark(server *SitingServer) {
	log.Logger.SetLevel(logrus.WarnLevel)
	e := rand.New(rand.NewSource(*benchmarkSeed))
	budgets := make([]int, *benchmarkCount)
	for i := range budgets {
		budgets[i] = e.Intn(server.planner.MaxBudget() + 2)
	}

	start := time.Now()
	var wg sync.WaitGroup
	var satisfied atomic.Int32
	if *benchmarkCPU == 1 {
		for _, p := range budgets {
			res, err := server.planner.Plan(p)
			if err != nil {
				log.Error("benchmark failed, err:", err)
				continue
			}
			if res.BudgetSatisfied {
				satisfied.Add(1)
			}
		}
	} else {
		runtime.GOMAXPROCS(*benchmarkCPU)
		wg.Add(*benchmarkCount)
		for _, p := range budgets {
			go func(p int) {
				defer wg.Done()
				res, err := server.planner.Plan(p)
				if err != nil {
					log.Error("benchmark failed, err:", err)
					return
				}
				if res.BudgetSatisfied {
					satisfied.Add(1)
				}
			}(p)
		}
		wg.Wait()
	}
	timeCost := time.Since(start) * time.Duration(*benchmarkCPU)
	log.Error(
		"benchmark finished", "\n",
		"count:", *benchmarkCount, "\n",
		"time:", timeCost, "\n",
		"avg:", timeCost/time.Duration(*benchmarkCount), "\n",
		"satisfied:", satisfied.Load(), "\n",
	)
}
