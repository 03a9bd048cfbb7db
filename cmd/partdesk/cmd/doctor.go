package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and backend reachability",
	Long:  "Verify the local configuration and that the assistant backend answers.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	fmt.Println("Checking configuration...")
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  ✗ config: %v\n", err)
		return fmt.Errorf("configuration check failed")
	}
	fmt.Println("  ✓ configuration valid")
	fmt.Printf("  ✓ assistant endpoint: %s (timeout %s)\n", cfg.Assistant.BaseURL, cfg.Assistant.Timeout)
	fmt.Println()

	fmt.Println("Checking assistant backend...")
	fmt.Println()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	ok := true
	if err := probeChatEndpoint(ctx, cfg.Assistant.BaseURL); err != nil {
		fmt.Printf("  ✗ %s/api/chat: %v\n", cfg.Assistant.BaseURL, err)
		ok = false
	} else {
		fmt.Printf("  ✓ %s/api/chat reachable\n", cfg.Assistant.BaseURL)
	}
	fmt.Println()

	printSystemSection()

	if !ok {
		fmt.Println("Assistant backend is not reachable; chat will answer with apologies only.")
		return fmt.Errorf("backend check failed")
	}
	fmt.Println("All checks passed")
	return nil
}

// probeChatEndpoint sends an empty-ish chat request. Any HTTP answer counts
// as reachable; only transport failures are reported.
func probeChatEndpoint(ctx context.Context, baseURL string) error {
	body := bytes.NewBufferString(`{"message": "ping", "mode": null}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/chat", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

func printSystemSection() {
	fmt.Println("System:")
	fmt.Println()
	fmt.Printf("  go: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	if info, err := host.Info(); err == nil {
		fmt.Printf("  host: %s %s (up %s)\n", info.Platform, info.PlatformVersion,
			(time.Duration(info.Uptime) * time.Second).Round(time.Minute))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("  memory: %.1f GiB total, %.0f%% used\n",
			float64(vm.Total)/(1<<30), vm.UsedPercent)
	}
	if avg, err := load.Avg(); err == nil {
		fmt.Printf("  load: %.2f %.2f %.2f\n", avg.Load1, avg.Load5, avg.Load15)
	}
	fmt.Println()
}
