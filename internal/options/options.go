// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" usage:"SVD file to convert"`
}

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i,input" usage:"input SVD file"`
	Output string `flag:"o,output" usage:"output directory, or .html file for a single page (default: input name with .html)"`
	Config string `flag:"c,config" usage:"settings file for page title, stylesheet and register order"`
	Batch  string `flag:"batch" usage:"batch process files matching pattern (e.g. *.svd)"`
}

// Flags contains behavior options.
type Flags struct {
	Single bool `flag:"single" usage:"write all peripherals into a single page"`
	Sort   bool `flag:"sort" usage:"order registers by offset instead of declaration order"`
	Verify bool `flag:"verify" usage:"verify the written pages by parsing them again"`
	Debug  bool `flag:"debug" usage:"enable debug logging"`
	Quiet  bool `flag:"q" usage:"quiet mode"`
}

// Program options of the converter.
type Program struct {
	Parameters
	Flags
}

// Settings are read from the optional settings file.
type Settings struct {
	Title          string `config:"page.title"`
	StylesheetFile string `config:"page.stylesheet"`
	SortByOffset   bool   `config:"registers.sort_by_offset,default=false"`

	Stylesheet string `config:"-"` // content of StylesheetFile
}
