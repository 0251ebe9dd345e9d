package menu

const (
	addCommandConstant        = "add"
	removeCommandConstant     = "remove"
	listCommandConstant       = "list"
	linkedCommandConstant     = "linked"
	checkCommandConstant      = "check"
	cloneCheckCommandConstant = "clone-check"
	deleteAllCommandConstant  = "delete-all"
	assumeYesFlagConstant     = "--yes"
)

// DefaultItems lists the entries shown by the ghssh menu, mirroring the command tree.
func DefaultItems() []Item {
	return []Item{
		{Key: "1", Title: "Add a profile", Command: []string{addCommandConstant}, Inputs: []Input{{Label: "Profile label"}, {Label: "Email for the key comment"}}},
		{Key: "2", Title: "Remove a profile", Command: []string{removeCommandConstant}, Inputs: []Input{{Label: "Profile label"}}},
		{Key: "3", Title: "List profiles", Command: []string{listCommandConstant}},
		{Key: "4", Title: "Show keys loaded in the agent", Command: []string{linkedCommandConstant}},
		{Key: "5", Title: "Check GitHub connectivity", Command: []string{checkCommandConstant}, Inputs: []Input{{Label: "Profile labels", Optional: true}}},
		{Key: "6", Title: "Check repository access", Command: []string{cloneCheckCommandConstant}, Inputs: []Input{{Label: "Repository (owner/repo or URL)"}}},
		{
			Key:          "7",
			Title:        "Remove all keys from the agent",
			Command:      []string{deleteAllCommandConstant, assumeYesFlagConstant},
			Confirmation: "Remove every identity from the SSH agent? [y/N]: ",
		},
	}
}
