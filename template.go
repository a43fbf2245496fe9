package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/templates"
)

var (
	templateName        string
	templateDescription string
	templateInstanceID  string
	templateDocOnly     bool
)

var templateCmd = &cobra.Command{
	Use:       "template <type>",
	Short:     "Print the n8n workflow for an agent type",
	Long:      "Renders a workflow template to stdout without touching the database.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: agentTypeNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentType, ok := models.ParseAgentType(args[0])
		if !ok {
			return fmt.Errorf("unknown agent type %q (valid: %s)", args[0], strings.Join(agentTypeNames(), ", "))
		}

		generated, err := templates.NewGenerator(templateInstanceID).Generate(agentType, templateName, templateDescription)
		if err != nil {
			return err
		}

		var out any = generated
		if templateDocOnly {
			out = generated.Document
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateName, "name", "", "workflow display name")
	templateCmd.Flags().StringVar(&templateDescription, "description", "", "workflow description")
	templateCmd.Flags().StringVar(&templateInstanceID, "instance-id", templates.DefaultInstanceID, "n8n instance id stamped into the document")
	templateCmd.Flags().BoolVar(&templateDocOnly, "workflow-only", false, "print only the importable workflow document")
}

func agentTypeNames() []string {
	names := make([]string, 0, len(models.ValidAgentTypes))
	for _, t := range models.ValidAgentTypes {
		names = append(names, string(t))
	}
	return names
}
