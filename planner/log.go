package planner

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "planner")
