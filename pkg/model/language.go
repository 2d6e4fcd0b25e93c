package model

// DescriptorLanguage identifies a workflow descriptor language known to the host.
type DescriptorLanguage string

const (
	LanguageSMK DescriptorLanguage = "SMK"
	LanguageCWL DescriptorLanguage = "CWL"
	LanguageWDL DescriptorLanguage = "WDL"
	LanguageNFL DescriptorLanguage = "NFL"
)

// String returns the string representation of the language.
func (l DescriptorLanguage) String() string {
	return string(l)
}

// FileType classifies an indexed file for host consumption.
type FileType string

const (
	FileTypePrimaryDescriptor  FileType = "PRIMARY_DESCRIPTOR"
	FileTypeImportedDescriptor FileType = "IMPORTED_DESCRIPTOR"
	FileTypeTestParameterFile  FileType = "TEST_PARAMETER_FILE"
	FileTypeOther              FileType = "OTHER"
)

// String returns the string representation of the file type.
func (t FileType) String() string {
	return string(t)
}
