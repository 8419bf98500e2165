package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/logger"
)

type Scheduler struct {
	instance gocron.Scheduler
	log      *logrus.Entry
}

func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{instance: s, log: logger.Component("scheduler")}, nil
}

// AddJob runs job every interval, replacing any job with the same tag.
// Runs of one job never overlap.
func (s *Scheduler) AddJob(tag string, interval time.Duration, job func()) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s for job %q", interval, tag)
	}
	s.instance.RemoveByTags(tag)
	_, err := s.instance.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(job),
		gocron.WithTags(tag),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.log.WithError(err).WithField("tag", tag).Error("Error adding job to scheduler")
		return err
	}
	s.log.WithFields(logrus.Fields{"tag": tag, "interval": interval}).Info("Job scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.instance.Start()
	s.log.Info("Scheduler started")
}

func (s *Scheduler) Shutdown() error {
	return s.instance.Shutdown()
}
