package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/appsight"
	"github.com/jward/appsight/render"
	"github.com/jward/appsight/seq"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inspect and maintain the deployment inventory",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the recorded deployments",
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := openInventory()
		if err != nil {
			return err
		}
		defer inv.Close()

		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return err
		}
		deps, err := inv.Deployments(!all)
		if err != nil {
			return err
		}

		columns := []string{"env", "org", "app", "version", "status", "fetched_at"}
		rows := seq.Map(seq.FromSlice(deps), func(d appsight.Deployment) seq.Row {
			return seq.NewRow(columns, []any{
				d.Env, d.Org, d.App, d.Version, d.Status,
				d.FetchedAt.Format(time.RFC3339),
			})
		})
		return render.Table(cmd.OutOrStdout(), rows)
	},
}

var inventoryAddCmd = &cobra.Command{
	Use:   "add <env> <org> <app>",
	Short: "Record or update a deployment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := openInventory()
		if err != nil {
			return err
		}
		defer inv.Close()

		ver, _ := cmd.Flags().GetString("version")
		commit, _ := cmd.Flags().GetString("commit")
		status, _ := cmd.Flags().GetString("status")
		if status != appsight.StatusSuccess && status != appsight.StatusFailed {
			return fmt.Errorf("status must be %q or %q", appsight.StatusSuccess, appsight.StatusFailed)
		}

		dep := appsight.Deployment{
			Env: args[0], Org: args[1], App: args[2],
			Version:   ver,
			CommitSHA: commit,
			Status:    status,
			FetchedAt: time.Now().UTC(),
		}
		if err := inv.Upsert(&dep); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded %s\n", dep.Key())
		return nil
	},
}

func openInventory() (*appsight.Inventory, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.InventoryPath == "" {
		return nil, fmt.Errorf("no inventory configured (set --inventory or inventory_path)")
	}
	return appsight.OpenInventory(cfg.InventoryPath)
}

func init() {
	inventoryListCmd.Flags().Bool("all", false, "include failed fetches")
	inventoryAddCmd.Flags().String("version", "", "deployed application version")
	inventoryAddCmd.Flags().String("commit", "", "source commit of the deployment")
	inventoryAddCmd.Flags().String("status", appsight.StatusSuccess, "fetch status")
	inventoryCmd.AddCommand(inventoryListCmd, inventoryAddCmd)
	rootCmd.AddCommand(inventoryCmd)
}
