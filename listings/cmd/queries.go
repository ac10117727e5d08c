package main

import (
	"strconv"

	"github.com/arthur-debert/listings/listings/query"
	"github.com/spf13/cobra"
)

// addSearchCommand adds the search command group
func (cli *CLI) addSearchCommand() {
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Find properties by broker or number of rooms",
	}

	brokerCmd := &cobra.Command{
		Use:   "broker <name>",
		Short: "Properties of one broker, ordered by price",
		Long: `List the properties of a broker (exact, case-sensitive name), ordered
by price ascending, or descending with --desc.

Examples:
  listings search broker "Ivan Petrov"
  listings search broker "Ivan Petrov" --desc`,

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, _ := cmd.Flags().GetBool("desc")
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			ps, err := query.ByBroker(svc.All(), args[0], !desc)
			if err != nil {
				return err
			}
			return cli.render(ps)
		},
	}
	brokerCmd.Flags().Bool("desc", false, "Order by price descending")

	roomsCmd := &cobra.Command{
		Use:   "rooms <n>",
		Short: "Properties with exactly n rooms, most expensive first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := strconv.Atoi(args[0])
			if err != nil {
				return NewValidationError("search by rooms", "number of rooms", args[0])
			}
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			ps, err := query.ByRooms(svc.All(), rooms)
			if err != nil {
				return err
			}
			return cli.render(ps)
		},
	}

	searchCmd.AddCommand(brokerCmd, roomsCmd)
	cli.rootCmd.AddCommand(searchCmd)
}

// addSortCommand adds the sort command
func (cli *CLI) addSortCommand() {
	sortCmd := &cobra.Command{
		Use:   "sort",
		Short: "Reorder the stored properties by price",
		Long: `Reorder the stored properties by price, ascending or with --desc
descending, and save the new order. Equal prices keep ascending
reference order.`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, _ := cmd.Flags().GetBool("desc")
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			if err := svc.SortAll(!desc); err != nil {
				return WrapError("sort properties", err)
			}
			return cli.render(svc.All())
		},
	}
	sortCmd.Flags().Bool("desc", false, "Most expensive first")

	cli.rootCmd.AddCommand(sortCmd)
}

// addReportCommand adds the report command group
func (cli *CLI) addReportCommand() {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Price and sales reports",
	}

	mostExpensiveCmd := &cobra.Command{
		Use:   "most-expensive <area>",
		Short: "The most expensive property in an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			p, err := query.MostExpensiveInArea(svc.All(), args[0])
			if err != nil {
				return err
			}
			return cli.render(p)
		},
	}

	averageCmd := &cobra.Command{
		Use:   "average <area>",
		Short: "Average price of the properties in an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			avg, err := query.AveragePriceInArea(svc.All(), args[0])
			if err != nil {
				return err
			}
			return cli.render(avg)
		},
	}

	soldCmd := &cobra.Command{
		Use:   "sold-by-broker",
		Short: "Share of sold properties per broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			sales, err := query.SoldPercentageByBroker(svc.All())
			if err != nil {
				return err
			}
			return cli.render(sales)
		},
	}

	reportCmd.AddCommand(mostExpensiveCmd, averageCmd, soldCmd)
	cli.rootCmd.AddCommand(reportCmd)
}
