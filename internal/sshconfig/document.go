package sshconfig

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	hostKeywordConstant                = "host"
	matchKeywordConstant               = "match"
	hostNameKeywordConstant            = "hostname"
	userKeywordConstant                = "user"
	identityFileKeywordConstant        = "identityfile"
	identitiesOnlyKeywordConstant      = "identitiesonly"
	keywordValueSeparatorConstant      = "="
	lineSeparatorConstant              = "\n"
	carriageReturnConstant             = "\r"
	affirmativeValueConstant           = "yes"
	negativeValueConstant              = "no"
	hostHeaderTemplateConstant         = "Host %s"
	optionLineTemplateConstant         = "  %s %s"
	hostNameOptionConstant             = "HostName"
	userOptionConstant                 = "User"
	identityFileOptionConstant         = "IdentityFile"
	identitiesOnlyOptionConstant       = "IdentitiesOnly"
	hostAlreadyPresentTemplateConstant = "%w: %s"
	hostAlreadyPresentMessageConstant  = "host block already present"
	hostAliasRequiredMessageConstant   = "host alias required"
	doubleQuoteConstant                = "\""
	commentPrefixConstant              = "#"
	hostPatternOperatorsConstant       = "*?!"
)

// ErrHostAlreadyPresent indicates AppendHost found an existing block for the alias.
var ErrHostAlreadyPresent = errors.New(hostAlreadyPresentMessageConstant)

// ErrHostAliasRequired indicates an empty alias was supplied.
var ErrHostAliasRequired = errors.New(hostAliasRequiredMessageConstant)

// BlockKind distinguishes the preamble from Host and Match blocks.
type BlockKind int

// Block kinds.
const (
	BlockKindPreamble BlockKind = iota
	BlockKindHost
	BlockKindMatch
)

// Block is one header line and its option lines, kept as raw text.
// Leading holds the comment lines written directly above the header; they
// travel with the block.
type Block struct {
	Kind     BlockKind
	Leading  []string
	Header   string
	Patterns []string
	Lines    []string
}

// HostEntry is the structured form of a host alias block managed by ghssh.
type HostEntry struct {
	Alias          string
	HostName       string
	User           string
	IdentityFile   string
	IdentitiesOnly bool
}

// Document is a parsed SSH client configuration.
type Document struct {
	blocks []Block
}

// Parse splits configuration text into blocks. Parsing never fails; unknown lines stay in their block.
func Parse(content string) Document {
	normalizedContent := strings.ReplaceAll(content, carriageReturnConstant+lineSeparatorConstant, lineSeparatorConstant)
	document := Document{}
	currentBlock := Block{Kind: BlockKindPreamble}

	for _, line := range strings.Split(normalizedContent, lineSeparatorConstant) {
		keyword, value := splitDirective(line)
		blockKind, isHeader := headerKind(keyword)
		if !isHeader {
			currentBlock.Lines = append(currentBlock.Lines, line)
			continue
		}
		var leadingComments []string
		if currentBlock.Kind != BlockKindPreamble {
			currentBlock.Lines, leadingComments = detachTrailingComments(currentBlock.Lines)
		}
		document.appendBlock(currentBlock)
		currentBlock = Block{Kind: blockKind, Leading: leadingComments, Header: line, Patterns: strings.Fields(value)}
	}
	document.appendBlock(currentBlock)
	return document
}

// Blocks returns a copy of the parsed blocks.
func (document Document) Blocks() []Block {
	return append([]Block{}, document.blocks...)
}

// String serializes the document with one blank line between blocks and a trailing newline.
func (document Document) String() string {
	renderedBlocks := make([]string, 0, len(document.blocks))
	for _, block := range document.blocks {
		blockLines := block.Lines
		if block.Kind != BlockKindPreamble {
			blockLines = append(append(append([]string{}, block.Leading...), block.Header), block.Lines...)
		}
		renderedBlocks = append(renderedBlocks, strings.Join(blockLines, lineSeparatorConstant))
	}
	if len(renderedBlocks) == 0 {
		return ""
	}
	return strings.Join(renderedBlocks, lineSeparatorConstant+lineSeparatorConstant) + lineSeparatorConstant
}

// Aliases lists Host blocks with a single literal pattern starting with prefix, in document order.
// Wildcard and negated patterns are skipped.
func (document Document) Aliases(prefix string) []string {
	aliases := []string{}
	for _, block := range document.blocks {
		if block.Kind != BlockKindHost || len(block.Patterns) != 1 {
			continue
		}
		if strings.ContainsAny(block.Patterns[0], hostPatternOperatorsConstant) {
			continue
		}
		if strings.HasPrefix(block.Patterns[0], prefix) {
			aliases = append(aliases, block.Patterns[0])
		}
	}
	return aliases
}

// HasHost reports whether a Host block names exactly this alias.
func (document Document) HasHost(alias string) bool {
	_, found := document.indexOfHost(alias)
	return found
}

// Host returns the structured options of the Host block for alias.
func (document Document) Host(alias string) (HostEntry, bool) {
	blockIndex, found := document.indexOfHost(alias)
	if !found {
		return HostEntry{}, false
	}

	entry := HostEntry{Alias: alias}
	for _, line := range document.blocks[blockIndex].Lines {
		keyword, value := splitDirective(line)
		switch keyword {
		case hostNameKeywordConstant:
			entry.HostName = value
		case userKeywordConstant:
			entry.User = value
		case identityFileKeywordConstant:
			entry.IdentityFile = strings.Trim(value, doubleQuoteConstant)
		case identitiesOnlyKeywordConstant:
			entry.IdentitiesOnly = strings.EqualFold(value, affirmativeValueConstant)
		}
	}
	return entry, true
}

// AppendHost adds a Host block for entry at the end of the document.
func (document *Document) AppendHost(entry HostEntry) error {
	trimmedAlias := strings.TrimSpace(entry.Alias)
	if len(trimmedAlias) == 0 {
		return ErrHostAliasRequired
	}
	if document.HasHost(trimmedAlias) {
		return fmt.Errorf(hostAlreadyPresentTemplateConstant, ErrHostAlreadyPresent, trimmedAlias)
	}

	identitiesOnlyValue := negativeValueConstant
	if entry.IdentitiesOnly {
		identitiesOnlyValue = affirmativeValueConstant
	}
	document.blocks = append(document.blocks, Block{
		Kind:     BlockKindHost,
		Header:   fmt.Sprintf(hostHeaderTemplateConstant, trimmedAlias),
		Patterns: []string{trimmedAlias},
		Lines: []string{
			fmt.Sprintf(optionLineTemplateConstant, hostNameOptionConstant, entry.HostName),
			fmt.Sprintf(optionLineTemplateConstant, userOptionConstant, entry.User),
			fmt.Sprintf(optionLineTemplateConstant, identityFileOptionConstant, quoteIfNeeded(entry.IdentityFile)),
			fmt.Sprintf(optionLineTemplateConstant, identitiesOnlyOptionConstant, identitiesOnlyValue),
		},
	})
	return nil
}

// RemoveHost drops every Host block naming exactly this alias and reports whether any was removed.
func (document *Document) RemoveHost(alias string) bool {
	retainedBlocks := make([]Block, 0, len(document.blocks))
	removed := false
	for _, block := range document.blocks {
		if block.Kind == BlockKindHost && len(block.Patterns) == 1 && block.Patterns[0] == alias {
			removed = true
			continue
		}
		retainedBlocks = append(retainedBlocks, block)
	}
	document.blocks = retainedBlocks
	return removed
}

func (document Document) indexOfHost(alias string) (int, bool) {
	for blockIndex, block := range document.blocks {
		if block.Kind == BlockKindHost && len(block.Patterns) == 1 && block.Patterns[0] == alias {
			return blockIndex, true
		}
	}
	return -1, false
}

func (document *Document) appendBlock(block Block) {
	block.Lines = trimTrailingBlankLines(block.Lines)
	if block.Kind == BlockKindPreamble {
		block.Lines = trimLeadingBlankLines(block.Lines)
		if len(block.Lines) == 0 {
			return
		}
	}
	document.blocks = append(document.blocks, block)
}

// splitDirective returns the lower-cased keyword and its value for "Keyword value" or "Keyword=value" lines.
func splitDirective(line string) (string, string) {
	trimmedLine := strings.TrimSpace(line)
	if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, commentPrefixConstant) {
		return "", ""
	}
	keywordEnd := strings.IndexFunc(trimmedLine, func(character rune) bool {
		return unicode.IsSpace(character) || string(character) == keywordValueSeparatorConstant
	})
	if keywordEnd < 0 {
		return strings.ToLower(trimmedLine), ""
	}
	keyword := strings.ToLower(trimmedLine[:keywordEnd])
	value := strings.TrimSpace(trimmedLine[keywordEnd:])
	value = strings.TrimSpace(strings.TrimPrefix(value, keywordValueSeparatorConstant))
	return keyword, value
}

func headerKind(keyword string) (BlockKind, bool) {
	switch keyword {
	case hostKeywordConstant:
		return BlockKindHost, true
	case matchKeywordConstant:
		return BlockKindMatch, true
	default:
		return BlockKindPreamble, false
	}
}

func quoteIfNeeded(value string) string {
	if strings.IndexFunc(value, unicode.IsSpace) < 0 {
		return value
	}
	return doubleQuoteConstant + value + doubleQuoteConstant
}

// detachTrailingComments splits off the comment lines that end a block when a
// blank line separates them from the block's options.
func detachTrailingComments(lines []string) ([]string, []string) {
	trimmedLines := trimTrailingBlankLines(lines)
	runStart := len(trimmedLines)
	for runStart > 0 && isCommentOrBlank(trimmedLines[runStart-1]) {
		runStart--
	}
	commentRun := trimmedLines[runStart:]
	detachedComments := trimLeadingBlankLines(commentRun)
	if len(detachedComments) == 0 || len(detachedComments) == len(commentRun) {
		return lines, nil
	}
	return trimmedLines[:runStart], detachedComments
}

func isCommentOrBlank(line string) bool {
	trimmedLine := strings.TrimSpace(line)
	return len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, commentPrefixConstant)
}

func trimTrailingBlankLines(lines []string) []string {
	endIndex := len(lines)
	for endIndex > 0 && len(strings.TrimSpace(lines[endIndex-1])) == 0 {
		endIndex--
	}
	return lines[:endIndex]
}

func trimLeadingBlankLines(lines []string) []string {
	startIndex := 0
	for startIndex < len(lines) && len(strings.TrimSpace(lines[startIndex])) == 0 {
		startIndex++
	}
	return lines[startIndex:]
}
