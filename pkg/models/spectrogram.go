package models

// CreateSpectrogramsRequest asks for resampled spectrograms of one class
type CreateSpectrogramsRequest struct {
	Body struct {
		InputKey string  `json:"input_key" minLength:"1" required:"true" doc:"Object key of the uploaded ping table"`
		Class    string  `json:"class" minLength:"1" required:"true" doc:"Species class label"`
		Length   int     `json:"length,omitempty" minimum:"0" maximum:"10000" doc:"Rows per spectrogram, defaults to the server setting"`
		Count    int     `json:"count,omitempty" minimum:"0" maximum:"1000" doc:"Number of spectrograms, defaults to 1"`
		Seed     *uint64 `json:"seed,omitempty" doc:"Seed of the first spectrogram"`
	}
}

// SpectrogramBody is one resampled matrix
type SpectrogramBody struct {
	IndividualID string      `json:"individual_id" doc:"Fish the pings were drawn from"`
	Seed         uint64      `json:"seed" doc:"Seed used for this spectrogram"`
	Rows         [][]float64 `json:"rows" doc:"Length x frequency matrix"`
}

// CreateSpectrogramsResponseBody is the body of the spectrogram response
type CreateSpectrogramsResponseBody struct {
	Class        string            `json:"class" doc:"Species class label"`
	Frequencies  []string          `json:"frequencies" doc:"Frequency column names, one per matrix column"`
	Spectrograms []SpectrogramBody `json:"spectrograms" doc:"Resampled matrices"`
}

// CreateSpectrogramsResponse returns the matrices
type CreateSpectrogramsResponse struct {
	Body CreateSpectrogramsResponseBody
}
