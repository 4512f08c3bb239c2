package main

import (
	"fmt"
	"os"
)

const version = "0.0.1-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	for _, a := range args {
		switch a {
		case "--version", "-v":
			fmt.Println("bagsakan", version)
			return 0
		case "--help", "-h":
			printUsage()
			return 0
		}
	}
	return runBuild(args)
}

func printUsage() {
	fmt.Println("bagsakan - generates runtime type validators from TypeScript interfaces")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  bagsakan [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --config <path>   Path to bagsakan.toml (default: bagsakan.toml)")
	fmt.Println("  --version, -v     Print version and exit")
	fmt.Println("  --help, -h        Print this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  bagsakan")
	fmt.Println("  bagsakan --config bagsakan.ci.toml")
	fmt.Println()
}
