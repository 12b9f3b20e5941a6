package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"task-manager.com/task-manager/internal/http/validators"
	model "task-manager.com/task-manager/internal/models"
)

var supplierCmd = &cobra.Command{
	Use:   "supplier",
	Short: "Manage suppliers",
}

type supplierFlags struct {
	in model.SupplierInput
}

func (f *supplierFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.in.Name, "name", "", "supplier name")
	cmd.Flags().StringVar(&f.in.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&f.in.LocationName, "location", "", "location name")
	cmd.Flags().StringVar(&f.in.Email, "email-address", "", "contact email")
	cmd.Flags().StringVar(&f.in.Category, "category", "", "supplier category")
	cmd.Flags().StringVar(&f.in.Notes, "notes", "", "free-form notes")
}

func (f *supplierFlags) patch(cmd *cobra.Command) model.SupplierPatch {
	in := f.in.Normalize()
	changed := cmd.Flags().Changed

	var p model.SupplierPatch
	if changed("name") {
		p.Name = &in.Name
	}
	if changed("phone") {
		p.Phone = &in.Phone
	}
	if changed("location") {
		p.LocationName = &in.LocationName
	}
	if changed("email-address") {
		p.Email = &in.Email
	}
	if changed("category") {
		p.Category = &in.Category
	}
	if changed("notes") {
		p.Notes = &in.Notes
	}
	return p
}

func newSupplierAddCmd() *cobra.Command {
	var flags supplierFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a supplier",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.in.Normalize()
			if err := validators.ValidateSupplierInput(in); err != nil {
				return err
			}

			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			supplier, err := ws.store.AddSupplier(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), supplier.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newSupplierEditCmd() *cobra.Command {
	var flags supplierFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := flags.patch(cmd)
			if patch.Empty() {
				return fmt.Errorf("nothing to change")
			}
			if err := validators.ValidateSupplierPatch(patch); err != nil {
				return err
			}

			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			return ws.store.UpdateSupplier(cmd.Context(), args[0], patch)
		},
	}
	flags.register(cmd)
	return cmd
}

func newSupplierDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a supplier that no task uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			return ws.store.DeleteSupplier(cmd.Context(), args[0])
		},
	}
}

func newSupplierListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List suppliers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			renderSuppliers(cmd.OutOrStdout(), ws.store.Suppliers())
			return nil
		},
	}
}

func init() {
	supplierCmd.AddCommand(
		newSupplierAddCmd(),
		newSupplierEditCmd(),
		newSupplierDeleteCmd(),
		newSupplierListCmd(),
	)
	rootCmd.AddCommand(supplierCmd)
}
