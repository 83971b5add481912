/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/userpanel/adminserver/cmd"

func main() {
	cmd.Execute()
}
