package main

import (
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/n8n-backup/cmd"
)

// init configures the initial logging level for n8n-backup.
//
// It sets logrus to InfoLevel by default, ensuring basic operational logs
// are visible unless overridden by flags like --debug or --log-level in cmd.
func init() {
	logrus.SetLevel(logrus.InfoLevel)
}

// main serves as the entry point for the n8n-backup application.
func main() {
	cmd.Execute()
}
