package summary

import "github.com/ehr/cds/internal/platform/imaging"

// MergeImagery left-outer-joins each imaging study with its encounter and
// picture. A study matching several encounters or pictures expands into
// one row per combination; a study matching neither still produces a row
// with the missing side null. Output order follows the study input order.
func MergeImagery(studies []ImagingStudyRecord, encounters []EncounterRecord, pictures []imaging.Picture) []ImageryRow {
	encIndex := make(map[string][]EncounterRecord, len(encounters))
	for _, enc := range encounters {
		encIndex[enc.ID] = append(encIndex[enc.ID], enc)
	}
	picIndex := make(map[string][]imaging.Picture, len(pictures))
	for _, pic := range pictures {
		picIndex[pic.ID] = append(picIndex[pic.ID], pic)
	}

	rows := make([]ImageryRow, 0, len(studies))
	for _, study := range studies {
		matchedEncs := encIndex[study.EncounterID]
		matchedPics := picIndex[study.PictureID]

		if len(matchedEncs) == 0 {
			matchedEncs = []EncounterRecord{{}}
		}
		if len(matchedPics) == 0 {
			matchedPics = []imaging.Picture{{}}
		}

		for _, enc := range matchedEncs {
			enc := enc
			for _, pic := range matchedPics {
				pic := pic
				row := ImageryRow{
					CodingSystemImage:  study.CodingSystem,
					CodingCodeImage:    study.CodingCode,
					CodingDisplayImage: study.CodingDisplay,
					IDImage:            study.ID,
				}
				if enc.ID != "" {
					row.CodingSystemEncounter = &enc.CodingSystem
					row.CodingCodeEncounter = &enc.CodingCode
					row.CodingDisplayEncounter = &enc.CodingDisplay
					row.IDEncounter = &enc.ID
					row.DateEncounter = &enc.Date
				}
				if pic.ID != "" {
					row.IDPicture = &pic.ID
					row.TypePicture = &pic.Type
					row.DataPicture = &pic.Image
					row.IDSubject = &pic.SubjectID
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}
