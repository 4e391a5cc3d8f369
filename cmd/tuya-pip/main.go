package main

import (
	tuyacmd "github.com/tuya/tuya-pip/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	tuyacmd.SetVersionInfo(version, commit)
	tuyacmd.Execute()
}
