package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var statusPort int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the health of a running bot",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusPort, "port", 8080, "HTTP port of the running bot")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health", statusPort))
	if err != nil {
		fmt.Fprintf(os.Stderr, "unreachable: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("http %d: %s\n", resp.StatusCode, string(body))
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
