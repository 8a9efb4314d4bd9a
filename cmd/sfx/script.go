package main

import (
	"fmt"

	sfx "github.com/grandchild/sfx_installer"
	"github.com/spf13/cobra"
)

// scriptCmd represents the script command
var scriptCmd = &cobra.Command{
	Use:   "script <install-spec>",
	Short: "Generate an installer script",
	Long: `Generate a bash installer script from a yaml installer specification. Each
screen in the "install" list becomes a dialog call, or a block of shell code
for screens of type "code". An "uninstall" list is rendered as a second script,
which the installer writes to $destdir when it runs.`,
	Example: "sfx script -n setup -v prefix=/opt/myapp install.yml",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyScriptFlags(cmd, config)
		spec, err := sfx.LoadSpec(args[0])
		if err != nil {
			return err
		}
		generator, err := newGenerator(cmd, config)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		if err := generator.WriteInstaller(spec, name); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

// newGenerator sets up a generator with the configured dialog tool, uninstaller name and
// variables, speaking the configured language or the system's.
func newGenerator(cmd *cobra.Command, config *sfx.Config) (*sfx.Generator, error) {
	defs, _ := cmd.Flags().GetStringArray("var")
	vars := sfx.MergeVariables(sfx.VariablesFromMap(config.Variables), sfx.ParseVariables(defs))
	generator := sfx.NewGenerator(vars)
	generator.Dialog = config.Dialog
	generator.UninstallerName = config.Uninstaller
	translator, err := sfx.NewTranslator()
	if err != nil {
		return nil, err
	}
	if config.Language != "" {
		if err := translator.SetLanguage(config.Language); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Language '%s' not available, using '%s'\n",
				config.Language, translator.GetLanguage())
		}
	}
	generator.Messages = translator.Messages()
	return generator, nil
}

func applyScriptFlags(cmd *cobra.Command, config *sfx.Config) {
	flags := cmd.Flags()
	if flags.Changed("uname") {
		config.Uninstaller, _ = flags.GetString("uname")
	}
	if flags.Changed("dialog-tool") {
		config.Dialog, _ = flags.GetString("dialog-tool")
	}
	if flags.Changed("lang") {
		config.Language, _ = flags.GetString("lang")
	}
}

// addScriptFlags adds the flags shared by every command that generates scripts.
func addScriptFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("uname", "u", sfx.DefaultUninstallerName, "name of the uninstaller script")
	cmd.Flags().StringP("dialog-tool", "d", sfx.DefaultDialog, "name of the dialog tool")
	cmd.Flags().StringArrayP("var", "v", nil, "define variable name[=value] for the installer script (repeatable)")
	cmd.Flags().String("lang", "", "language of the installer's messages")
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	scriptCmd.Flags().StringP("name", "n", sfx.DefaultEntryName, "name of the installer script")
	addScriptFlags(scriptCmd)
}
