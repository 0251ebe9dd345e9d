package sshconfig_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghssh/internal/sshconfig"
)

const testConfigurationContentConstant = `# managed by hand
Include ~/.ssh/extra

Host *
  AddKeysToAgent yes

Host github-work
  HostName github.com
  User git
  IdentityFile /home/tester/.ssh/id_ed25519_work
  IdentitiesOnly yes


Match host bastion exec "true"
  ForwardAgent no

Host github-personal
  HostName github.com
  User git
  IdentityFile /home/tester/.ssh/id_ed25519_personal
  IdentitiesOnly yes
Host github-a github-b
  HostName github.com
`

func TestDocumentAliasesFollowDocumentOrder(testInstance *testing.T) {
	document := sshconfig.Parse(testConfigurationContentConstant)

	require.Equal(testInstance, []string{"github-work", "github-personal"}, document.Aliases("github-"))
	require.Empty(testInstance, document.Aliases("gitlab-"))
	require.True(testInstance, document.HasHost("github-work"))
	require.False(testInstance, document.HasHost("github-a"))

	blocks := document.Blocks()
	require.Len(testInstance, blocks, 6)
	require.Equal(testInstance, sshconfig.BlockKindPreamble, blocks[0].Kind)
	require.Equal(testInstance, sshconfig.BlockKindMatch, blocks[3].Kind)
}

func TestDocumentHostParsesOptions(testInstance *testing.T) {
	document := sshconfig.Parse(testConfigurationContentConstant)

	entry, found := document.Host("github-work")
	require.True(testInstance, found)
	require.Equal(testInstance, sshconfig.HostEntry{
		Alias:          "github-work",
		HostName:       "github.com",
		User:           "git",
		IdentityFile:   "/home/tester/.ssh/id_ed25519_work",
		IdentitiesOnly: true,
	}, entry)

	_, found = document.Host("github-missing")
	require.False(testInstance, found)
}

func TestDocumentRoundTripNormalizesBlankLines(testInstance *testing.T) {
	document := sshconfig.Parse(testConfigurationContentConstant)

	expected := `# managed by hand
Include ~/.ssh/extra

Host *
  AddKeysToAgent yes

Host github-work
  HostName github.com
  User git
  IdentityFile /home/tester/.ssh/id_ed25519_work
  IdentitiesOnly yes

Match host bastion exec "true"
  ForwardAgent no

Host github-personal
  HostName github.com
  User git
  IdentityFile /home/tester/.ssh/id_ed25519_personal
  IdentitiesOnly yes

Host github-a github-b
  HostName github.com
`
	require.Equal(testInstance, expected, document.String())
	require.Equal(testInstance, expected, sshconfig.Parse(document.String()).String())
}

func TestDocumentAppendAndRemoveHost(testInstance *testing.T) {
	document := sshconfig.Parse("")
	require.Empty(testInstance, document.String())

	entry := sshconfig.HostEntry{
		Alias:          "github-work",
		HostName:       "github.com",
		User:           "git",
		IdentityFile:   "/home/tester/.ssh/id_ed25519_work",
		IdentitiesOnly: true,
	}
	require.NoError(testInstance, document.AppendHost(entry))
	require.ErrorIs(testInstance, document.AppendHost(entry), sshconfig.ErrHostAlreadyPresent)
	require.ErrorIs(testInstance, document.AppendHost(sshconfig.HostEntry{}), sshconfig.ErrHostAliasRequired)

	require.Equal(testInstance, "Host github-work\n  HostName github.com\n  User git\n  IdentityFile /home/tester/.ssh/id_ed25519_work\n  IdentitiesOnly yes\n", document.String())

	reparsedEntry, found := sshconfig.Parse(document.String()).Host("github-work")
	require.True(testInstance, found)
	require.Equal(testInstance, entry, reparsedEntry)

	require.True(testInstance, document.RemoveHost("github-work"))
	require.False(testInstance, document.RemoveHost("github-work"))
	require.Empty(testInstance, document.String())
}

func TestDocumentRemoveHostKeepsNeighbours(testInstance *testing.T) {
	document := sshconfig.Parse(testConfigurationContentConstant)

	require.True(testInstance, document.RemoveHost("github-work"))
	require.Equal(testInstance, []string{"github-personal"}, document.Aliases("github-"))
	require.Contains(testInstance, document.String(), "Host *\n  AddKeysToAgent yes\n\nMatch host bastion")
}

func TestDocumentQuotesIdentityFileWithSpaces(testInstance *testing.T) {
	document := sshconfig.Parse("")
	require.NoError(testInstance, document.AppendHost(sshconfig.HostEntry{Alias: "github-x", HostName: "github.com", User: "git", IdentityFile: "/Users/My Name/.ssh/id_x"}))

	require.Contains(testInstance, document.String(), "  IdentityFile \"/Users/My Name/.ssh/id_x\"\n  IdentitiesOnly no\n")
	entry, found := sshconfig.Parse(document.String()).Host("github-x")
	require.True(testInstance, found)
	require.Equal(testInstance, "/Users/My Name/.ssh/id_x", entry.IdentityFile)
}

func TestDocumentKeepsCommentsWithTheFollowingBlock(testInstance *testing.T) {
	testCases := []struct {
		name           string
		content        string
		removedAlias   string
		expectedResult string
	}{
		{
			name:           "comment_above_next_host",
			content:        "Host github-personal\n  HostName github.com\n\n# corporate account, do not touch\nHost github-work\n  HostName github.com\n",
			removedAlias:   "github-personal",
			expectedResult: "# corporate account, do not touch\nHost github-work\n  HostName github.com\n",
		},
		{
			name:           "removed_block_takes_its_own_comment",
			content:        "Host github-personal\n  HostName github.com\n\n# corporate account\n# rotated yearly\nHost github-work\n  HostName github.com\n",
			removedAlias:   "github-work",
			expectedResult: "Host github-personal\n  HostName github.com\n",
		},
		{
			name:           "comment_after_options_stays_in_block",
			content:        "Host github-personal\n  HostName github.com\n  # IdentityFile ~/.ssh/old\n\nHost github-work\n  HostName github.com\n",
			removedAlias:   "github-work",
			expectedResult: "Host github-personal\n  HostName github.com\n  # IdentityFile ~/.ssh/old\n",
		},
		{
			name:           "comment_above_match",
			content:        "Host github-work\n  HostName github.com\n\n# bastion rules\nMatch host bastion\n  ForwardAgent no\n",
			removedAlias:   "github-work",
			expectedResult: "# bastion rules\nMatch host bastion\n  ForwardAgent no\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			document := sshconfig.Parse(testCase.content)
			require.Equal(testInstance, testCase.content, document.String())

			require.True(testInstance, document.RemoveHost(testCase.removedAlias))
			require.Equal(testInstance, testCase.expectedResult, document.String())
		})
	}
}

func TestDocumentAliasesSkipHostPatterns(testInstance *testing.T) {
	testCases := []struct {
		name            string
		content         string
		expectedAliases []string
	}{
		{
			name:            "star_wildcard",
			content:         "Host github-*\n  User git\n\nHost github-work\n  HostName github.com\n",
			expectedAliases: []string{"github-work"},
		},
		{
			name:            "question_wildcard",
			content:         "Host github-??\n  User git\n\nHost github-personal\n  HostName github.com\n",
			expectedAliases: []string{"github-personal"},
		},
		{
			name:            "negated_pattern",
			content:         "Host github-!old\n  User git\n",
			expectedAliases: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedAliases, sshconfig.Parse(testCase.content).Aliases("github-"))
		})
	}
}
