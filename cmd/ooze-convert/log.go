package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func HasArg(arg string) bool {
	for _, s := range os.Args {
		if s == arg {
			return true
		}
	}
	return false
}

type Logger struct{}

var (
	infoTag  = color.New(color.BgBlue, color.FgWhite, color.Bold).Sprint("INFO")
	warnTag  = color.New(color.BgYellow, color.FgBlack, color.Bold).Sprint("WARN")
	debugTag = color.New(color.BgCyan, color.FgWhite, color.Bold).Sprint("DEBUG")
	errorTag = color.New(color.BgRed, color.FgWhite, color.Bold).Sprint("ERROR")
)

func (logger Logger) print(tag string, data []interface{}) {
	str := ""
	for _, d := range data {
		str += fmt.Sprintf("%v ", d)
	}
	fmt.Println(tag, str)
}

func (logger Logger) Info(data ...interface{}) {
	logger.print(infoTag, data)
}

func (logger Logger) Warn(data ...interface{}) {
	logger.print(warnTag, data)
}

func (logger Logger) Debug(data ...interface{}) {
	if !HasArg("-debug") {
		return
	}
	logger.print(debugTag, data)
}

func (logger Logger) Error(data ...interface{}) {
	logger.print(errorTag, data)
}
