package cliconfig

import "github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"

// NewLogger returns the console logger for level.
func NewLogger(level string) (*log.ZerologAdapter, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewZerologAdapter(lvl), nil
}
