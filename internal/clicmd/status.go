package clicmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running hivemindd server's /api/v1/status endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := "http://" + strings.TrimPrefix(cfg.ListenAddr, "0.0.0.0") + "/api/v1/status"
		if strings.HasPrefix(url, "http://:") {
			url = "http://127.0.0.1" + url[len("http://"):]
		}

		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			return fmt.Errorf("request %s: %w", url, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
		}

		var pretty map[string]any
		if err := json.Unmarshal(body, &pretty); err != nil {
			fmt.Println(string(body))
			return nil
		}
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return nil
	},
}
