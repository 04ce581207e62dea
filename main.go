package main

import "github.com/surge-downloader/trtool/cmd"

func main() {
	cmd.Execute()
}
