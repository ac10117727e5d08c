package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// addBackupCommand adds the backup command group
func (cli *CLI) addBackupCommand() {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Save or restore a binary backup",
		Long: `Save the collection to a binary backup file, or replace the collection
with the contents of one. Overwriting a file or replacing a non-empty
collection asks for confirmation unless --yes is given.

Examples:
  listings backup save
  listings backup load --file /tmp/properties.bin --yes`,
	}

	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Write the collection to the backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			path, err := svc.SaveBackup(file)
			if err != nil {
				return WrapError("save backup", err)
			}
			cli.printf("Saved %d properties to %s\n", svc.Len(), path)
			return nil
		},
	}

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Replace the collection with the backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			n, err := svc.LoadBackup(file)
			if err != nil {
				return WrapError("load backup", err, "The stored properties were left unchanged")
			}
			cli.printf("Loaded %d properties from %s\n", n, or(file, svc.Config().BackupPath()))
			return nil
		},
	}

	for _, c := range []*cobra.Command{saveCmd, loadCmd} {
		c.Flags().String("file", "", "Backup file (default from configuration)")
		backupCmd.AddCommand(c)
	}
	cli.rootCmd.AddCommand(backupCmd)
}

// addExportCommand adds the export command
func (cli *CLI) addExportCommand() {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the printable report file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			path, err := svc.WriteReport(file)
			if err != nil {
				return WrapError("write report", err)
			}
			cli.printf("Report of %d properties written to %s\n", svc.Len(), path)
			return nil
		},
	}
	exportCmd.Flags().String("file", "", "Report file (default from configuration)")

	cli.rootCmd.AddCommand(exportCmd)
}

// addArchiveCommand adds the archive command and its show subcommand
func (cli *CLI) addArchiveCommand() {
	archiveCmd := &cobra.Command{
		Use:   "archive <out.zip>",
		Short: "Bundle backup, report and recovery text into a zip file",
		Long: `Write a zip archive holding the binary backup, the printable report and
the recovery text of the current collection.

Examples:
  listings archive /tmp/listings.zip
  listings archive show /tmp/listings.zip`,

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			if err := svc.WriteArchive(args[0]); err != nil {
				return WrapError("write archive", err)
			}
			cli.printf("Archive of %d properties written to %s\n", svc.Len(), args[0])
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <archive.zip>",
		Short: "List the entries of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.openService()
			if err != nil {
				return err
			}
			entries, err := svc.ReadArchive(args[0])
			if err != nil {
				return WrapError("read archive", err)
			}
			names := make([]string, 0, len(entries))
			for name := range entries {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cli.out, "%-30s %s\n", name, humanize.Bytes(uint64(len(entries[name]))))
			}
			return nil
		},
	}

	archiveCmd.AddCommand(showCmd)
	cli.rootCmd.AddCommand(archiveCmd)
}

// addConfigCommand adds the config command
func (cli *CLI) addConfigCommand() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Display the configuration resolved from flags, LISTINGS_* environment
variables, the configuration file and defaults, as YAML.

Examples:
  listings config
  LISTINGS_CAPACITY=20 listings config`,

		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if used := cli.viperInst.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cli.out, "# config file: %s\n", used)
			}
			enc := yaml.NewEncoder(cli.out)
			enc.SetIndent(2)
			if err := enc.Encode(cli.settings); err != nil {
				return WrapError("show configuration", err)
			}
			return enc.Close()
		},
	}

	cli.rootCmd.AddCommand(configCmd)
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
