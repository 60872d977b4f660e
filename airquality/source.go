package airquality

type LineSource interface {

	// returns the next line with surrounding whitespace trimmed;
	// an empty line means nothing arrived before the read timeout
	ReadLine() (string, error)
}
