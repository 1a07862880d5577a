package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/cwbudde/sobelpsnr/internal/sobel"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and kernel information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sobelpsnr version %s\n", version)
		fmt.Printf("  go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  sse kernel: %s\n", sobel.ActiveSSEKernel)
		fmt.Printf("  cpu:        %s\n", strings.Join(sobel.CPUFeatures(), ", "))
		fmt.Printf("  gomaxprocs: %d\n", runtime.GOMAXPROCS(0))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
