package cmd

import (
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"task-manager.com/task-manager/internal/store"
)

var (
	filterStatus   string
	filterPriority string
	filterSearch   string
	watch          bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show task counters and the filtered task list",
	Long:  "Shows task counters and the filtered task list. With --watch the view is redrawn whenever the data changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		if err := applyFilters(ws.store); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var renderMu sync.Mutex
		render := func() {
			renderMu.Lock()
			defer renderMu.Unlock()
			fmt.Fprintf(out, "\n== %s ==\n", time.Now().Format(time.DateTime))
			renderStats(out, ws.store.Stats())
			renderTasks(out, ws.store.FilteredTasks(), time.Now())
		}

		if !watch {
			render()
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		unsubscribe := ws.store.OnChange(render)
		defer unsubscribe()

		if err := ws.store.Start(ctx); err != nil {
			return err
		}
		render()

		select {
		case <-ctx.Done():
			return nil
		case <-ws.ended:
			return fmt.Errorf("session ended")
		}
	},
}

func applyFilters(st *store.Store) error {
	status, err := store.ParseStatusFilter(filterStatus)
	if err != nil {
		return err
	}
	priority, err := store.ParsePriorityFilter(filterPriority)
	if err != nil {
		return err
	}
	st.SetStatusFilter(status)
	st.SetPriorityFilter(priority)
	st.SetSearchQuery(filterSearch)
	return nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterStatus, "status", "all", "status filter: all, pending or completed")
	cmd.Flags().StringVar(&filterPriority, "priority", "all", "priority filter: all, low, medium or high")
	cmd.Flags().StringVar(&filterSearch, "search", "", "case-insensitive title search")
}

func init() {
	addFilterFlags(dashboardCmd)
	dashboardCmd.Flags().BoolVar(&watch, "watch", false, "keep running and redraw on every change")
	rootCmd.AddCommand(dashboardCmd)
}
