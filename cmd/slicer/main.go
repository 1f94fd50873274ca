package main

import "github.com/datazip-inc/slicer"

func main() {
	slicer.Run()
}
