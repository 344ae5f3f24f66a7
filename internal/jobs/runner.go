package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

type Job interface {
	Run()
}

type CronJob interface {
	Schedule() string
	Job
}

// TaskExecutor runs jobs inside a cron. A tick is skipped when the previous
// run of the same job has not finished yet.
type TaskExecutor struct {
	cron            *cron.Cron
	jobs            []Job
	cronJobs        []CronJob
	runningJobs     mapset.Set[Job]
	runningCronJobs mapset.Set[CronJob]
	muJobs          sync.Mutex
	muCronJobs      sync.Mutex
}

func NewTaskExecutor(jobs []Job, cronJobs []CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:            cron.New(),
		jobs:            jobs,
		cronJobs:        cronJobs,
		runningCronJobs: mapset.NewSet[CronJob](),
		runningJobs:     mapset.NewSet[Job](),
	}
}

// Run registers the jobs with the cron and starts it.
func (t *TaskExecutor) Run() {
	for _, job := range t.cronJobs {
		err := t.cron.AddFunc(job.Schedule(), func() {
			t.muCronJobs.Lock()

			if t.runningCronJobs.Contains(job) {
				logrus.Warn("task is already running, skipping this tick")
				t.muCronJobs.Unlock()
				return
			}

			t.runningCronJobs.Add(job)
			t.muCronJobs.Unlock()

			defer func() {
				t.muCronJobs.Lock()
				defer t.muCronJobs.Unlock()
				t.runningCronJobs.Remove(job)
			}()

			job.Run()
		})

		if err != nil {
			logrus.Errorf("failed to add task to cron: %v", err)
			panic(err)
		}
	}

	for _, job := range t.jobs {
		err := t.cron.AddFunc("@every 1s", func() {
			t.muJobs.Lock()

			if t.runningJobs.Contains(job) {
				logrus.Warn("task is already running, skipping this tick")
				t.muJobs.Unlock()
				return
			}

			t.runningJobs.Add(job)
			t.muJobs.Unlock()

			defer func() {
				t.muJobs.Lock()
				defer t.muJobs.Unlock()
				t.runningJobs.Remove(job)
			}()

			job.Run()
		})

		if err != nil {
			logrus.Errorf("failed to add task to cron: %v", err)
			panic(err)
		}
	}

	t.cron.Start()
}

func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all tasks")
	t.cron.Stop()
}
