package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/listings/listings/query"
	"github.com/arthur-debert/listings/listings/storage"
	"github.com/arthur-debert/listings/listings/store"
	"github.com/arthur-debert/listings/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// addAddCommand adds the add command, for one property from flags or a YAML batch
func (cli *CLI) addAddCommand() {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a property, or a batch of properties from a YAML file",
		Long: `Add a property described by flags. New properties are always Available.

With --file, every property listed in the YAML file is added, or none
of them if any one is rejected.

Examples:
  listings add --ref 12 --broker "Ivan Petrov" --type Apartment --area Center \
    --exposition South --price 250000 --total-area 85 --rooms 3 --floor 4
  listings add --file batch.yaml`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file, _ := cmd.Flags().GetString("file"); file != "" {
				return cli.executeAddBatch(file)
			}
			return cli.executeAdd(cmd)
		},
	}

	flags := addCmd.Flags()
	flags.Int("ref", 0, "Reference number (unique, positive)")
	flags.String("broker", "", "Broker name")
	flags.String("type", "", "Property type")
	flags.String("area", "", "Area or neighbourhood")
	flags.String("exposition", "", "Exposition (e.g. South)")
	flags.Float64("price", 0, "Price")
	flags.Float64("total-area", 0, "Total area in square metres")
	flags.Int("rooms", 0, "Number of rooms")
	flags.Int("floor", 0, "Floor")
	flags.String("file", "", "YAML file with a list of properties")
	addCmd.MarkFlagsMutuallyExclusive("file", "ref")

	cli.rootCmd.AddCommand(addCmd)
}

func (cli *CLI) executeAdd(cmd *cobra.Command) error {
	flags := cmd.Flags()
	for _, name := range []string{"ref", "broker", "type", "area", "exposition", "price", "total-area", "rooms", "floor"} {
		if !flags.Changed(name) {
			return NewValidationError("add property", "flags", "--"+name+" missing",
				"Pass every property flag, or use --file for a batch")
		}
	}

	var p types.Property
	p.Ref, _ = flags.GetInt("ref")
	p.Broker, _ = flags.GetString("broker")
	p.Type, _ = flags.GetString("type")
	p.Area, _ = flags.GetString("area")
	p.Exposition, _ = flags.GetString("exposition")
	p.Price, _ = flags.GetFloat64("price")
	p.TotalArea, _ = flags.GetFloat64("total-area")
	p.Rooms, _ = flags.GetInt("rooms")
	p.Floor, _ = flags.GetInt("floor")

	svc, err := cli.openService()
	if err != nil {
		return err
	}
	stored, err := svc.Add(p)
	if err != nil {
		return WrapError("add property", err)
	}

	cli.printf("Added property %d (%d/%d stored)\n", stored.Ref, svc.Len(), svc.Capacity())
	return cli.render(stored)
}

func (cli *CLI) executeAddBatch(file string) error {
	data, err := storage.ReadFile(storage.OSFileSystem{}, file)
	if err != nil {
		return WrapError("read batch file", err)
	}
	var batch []types.Property
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return &CLIError{
			Operation:   "read batch file",
			Cause:       "not a YAML list of properties",
			Details:     err.Error(),
			Suggestions: []string{"Each entry needs ref, broker, type, area, exposition, price, total_area, rooms and floor"},
			Underlying:  fmt.Errorf("%w: %w", types.ErrInvalidValue, err),
		}
	}

	svc, err := cli.openService()
	if err != nil {
		return err
	}
	stored, err := svc.AddMany(batch)
	if err != nil {
		return WrapError("add properties", err, "Nothing from the batch was stored")
	}

	cli.printf("Added %d properties (%d/%d stored)\n", len(stored), svc.Len(), svc.Capacity())
	return cli.render(stored)
}

// addGetCommand adds the get command
func (cli *CLI) addGetCommand() {
	getCmd := &cobra.Command{
		Use:   "get <ref>",
		Short: "Show one property by reference number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef("get property", args[0])
			if err != nil {
				return err
			}
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			p, err := svc.Get(ref)
			if err != nil {
				return WrapError("get property", err)
			}
			return cli.render(p)
		},
	}

	cli.rootCmd.AddCommand(getCmd)
}

// addListCommand adds the list command
func (cli *CLI) addListCommand() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List properties in collection order",
		Long: `List every stored property, only the sold ones, or the ones with the
largest total area.

Examples:
  listings list
  listings list --sold
  listings list --largest --format details`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sold, _ := cmd.Flags().GetBool("sold")
			largest, _ := cmd.Flags().GetBool("largest")

			svc, err := cli.openService()
			if err != nil {
				return err
			}

			ps := svc.All()
			switch {
			case sold:
				ps, err = query.Sold(ps)
			case largest:
				ps, err = query.LargestArea(ps)
			case len(ps) == 0 && cli.human():
				cli.printf("No properties stored (capacity %d)\n", svc.Capacity())
				return nil
			}
			if err != nil {
				return err
			}
			return cli.render(ps)
		},
	}

	listCmd.Flags().Bool("sold", false, "Only sold properties")
	listCmd.Flags().Bool("largest", false, "Only the properties with the largest total area")
	listCmd.MarkFlagsMutuallyExclusive("sold", "largest")

	cli.rootCmd.AddCommand(listCmd)
}

// addDeleteCommand adds the delete command
func (cli *CLI) addDeleteCommand() {
	deleteCmd := &cobra.Command{
		Use:   "delete [<ref> | --all]",
		Short: "Delete one property or all of them",
		Long: `Delete a property by reference number, or every property with --all.
The remaining properties keep their order. Asks for confirmation unless
--yes is given.

Examples:
  listings delete 12
  listings delete --all --yes`,

		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if all == (len(args) == 1) {
				return NewValidationError("delete", "arguments", fmt.Sprint(args),
					"Pass exactly one reference number, or --all")
			}

			if all {
				svc, err := cli.openService()
				if err != nil {
					return err
				}
				n, err := svc.DeleteAll()
				if err != nil {
					return WrapError("delete all properties", err)
				}
				cli.printf("Deleted %d properties\n", n)
				return nil
			}

			ref, err := parseRef("delete property", args[0])
			if err != nil {
				return err
			}
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			p, err := svc.Delete(ref)
			if err != nil {
				return WrapError("delete property", err)
			}
			cli.printf("Deleted property %d (%d/%d stored)\n", p.Ref, svc.Len(), svc.Capacity())
			return nil
		},
	}

	deleteCmd.Flags().Bool("all", false, "Delete every property")

	cli.rootCmd.AddCommand(deleteCmd)
}

// addUpdateCommand adds the update command
func (cli *CLI) addUpdateCommand() {
	updateCmd := &cobra.Command{
		Use:   "update <ref> <field> <value>",
		Short: "Change one field of a property",
		Long: fmt.Sprintf(`Change one field of a property. Sold properties cannot be changed.
Setting the status to Reserved lowers the price by 20%%.

Fields: %v

Examples:
  listings update 12 price 240000
  listings update 12 status reserved
  listings update 12 ref 13`, types.FieldNames()),

		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef("update property", args[0])
			if err != nil {
				return err
			}
			field, err := types.ParseField(args[1])
			if err != nil {
				return WrapError("update property", err)
			}
			change, err := store.ParseChange(field, args[2])
			if err != nil {
				return WrapError("update property", err)
			}

			svc, err := cli.openService()
			if err != nil {
				return err
			}
			outcome, err := svc.Update(ref, change)
			if err != nil {
				return WrapError("update property", err)
			}

			if field == types.FieldRef && outcome == store.Changed {
				ref, _ = strconv.Atoi(strings.TrimSpace(args[2]))
			}
			p, err := svc.Get(ref)
			if err != nil {
				return WrapError("update property", err)
			}
			cli.printf("Property %d %s\n", p.Ref, outcome)
			return cli.render(p)
		},
	}

	cli.rootCmd.AddCommand(updateCmd)
}

func parseRef(operation, raw string) (int, error) {
	ref, err := strconv.Atoi(raw)
	if err != nil || ref <= 0 {
		return 0, NewValidationError(operation, "reference number", raw,
			"Reference numbers are positive integers")
	}
	return ref, nil
}
