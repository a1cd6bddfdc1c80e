package cmd

import (
	"fmt"
	"strings"

	"github.com/Daskott/swiftly/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	firstNameArg string
	lastNameArg  string
	mobileArg    string
	contactsArg  []string
)

func createRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Saves your personal details & emergency contacts",
		Long: `Saves your personal details & emergency contacts, replacing whatever was saved before.
The first contact is your primary contact.

e.g. swiftly register --first Ann --last Lee --mobile +27000 --contact "Mom=+27111" --contact "Dad=+27222"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, clientConfig())
		},
	}

	cmd.Flags().StringVarP(&firstNameArg, "first", "f", "", "your first name")
	cmd.Flags().StringVarP(&lastNameArg, "last", "l", "", "your last name")
	cmd.Flags().StringVarP(&mobileArg, "mobile", "m", "", "the number your contacts should call you back on")
	cmd.Flags().StringArrayVarP(&contactsArg, "contact", "c", []string{}, "an emergency contact as \"Name=+number\", can be repeated")

	return cmd
}

func runRegister(cmd *cobra.Command, config *viper.Viper) error {
	p := &profile.Profile{
		FirstName:      firstNameArg,
		LastName:       lastNameArg,
		CallbackNumber: mobileArg,
	}

	for _, contact := range contactsArg {
		name, mobile, err := parseContact(contact)
		if err != nil {
			return err
		}
		p.AddContact(name, mobile)
	}

	store := profile.NewStore(profilePath(config))
	if err := store.Save(p); err != nil {
		return formattedError("%v", err)
	}

	cmd.Printf("%s Saved %v emergency contact(s) to %v\n", green("Done!"), len(p.Contacts), store.Path())
	return nil
}

func parseContact(contact string) (name string, mobile string, err error) {
	parts := strings.SplitN(contact, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid argument \"%v\", --contact should look like \"Name=+number\"", contact)
	}

	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
