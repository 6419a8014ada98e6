// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fixture

import "github.com/jeranaias/regnav/internal/model"

// demoDelayMS paces the demo tokens so streaming is visible.
const demoDelayMS = 40

func score(f float64) *float64 { return &f }

// DemoScript returns the built-in GDPR / AI Act script used when no file
// is given.
func DemoScript() *Script {
	return &Script{Entries: []Entry{
		{
			Match:        "dpia",
			TokenDelayMS: demoDelayMS,
			Metadata: &Metadata{
				Confidence: 87,
				Context: []model.Reference{
					{
						Text: "Where a type of processing in particular using new technologies, and taking into account the nature, " +
							"scope, context and purposes of the processing, is likely to result in a high risk to the rights and " +
							"freedoms of natural persons, the controller shall, prior to the processing, carry out an assessment " +
							"of the impact of the envisaged processing operations on the protection of personal data.",
						Metadata: model.ReferenceMetadata{Title: "Data protection impact assessment", ArticleNumber: "35", Regulation: "GDPR"},
						Score:    score(0.912),
						NodeID:   "GDPR_35",
					},
					{
						Text: "Where the data protection impact assessment indicates that the processing would result in a high risk " +
							"in the absence of measures taken by the controller to mitigate the risk, the controller shall consult " +
							"the supervisory authority prior to processing.",
						Metadata: model.ReferenceMetadata{Title: "Prior consultation", ArticleNumber: "36", Regulation: "GDPR"},
						Score:    score(0.774),
						NodeID:   "GDPR_36",
					},
					{
						Text: "Where applicable, deployers of high-risk AI systems shall use the information provided under Article 13 " +
							"to comply with their obligation to carry out a data protection impact assessment.",
						Metadata: model.ReferenceMetadata{Title: "Obligations of deployers of high-risk AI systems", ArticleNumber: "26", Regulation: "AI Act", Source: "EUR-Lex"},
						Score:    score(0.701),
					},
				},
				GraphData: &model.Graph{
					Nodes: []model.Node{
						{ID: "GDPR_35", Label: "GDPR Art. 35", Title: "Data protection impact assessment", Type: model.NodeRetrieved},
						{ID: "GDPR_36", Label: "GDPR Art. 36", Title: "Prior consultation", Type: model.NodeRetrieved},
						{ID: "AI_Act_26", Label: "AI Act Art. 26", Title: "Obligations of deployers of high-risk AI systems", Type: model.NodeRetrieved},
						{ID: "GDPR_9", Label: "GDPR Art. 9", Title: "Processing of special categories of personal data", Type: model.NodeCited},
						{ID: "AI_Act_13", Label: "AI Act Art. 13", Title: "Transparency and provision of information to deployers", Type: model.NodeCited},
					},
					Edges: []model.Edge{
						{ID: "e1", Source: "GDPR_35", Target: "GDPR_9"},
						{ID: "e2", Source: "GDPR_36", Target: "GDPR_35"},
						{ID: "e3", Source: "AI_Act_26", Target: "GDPR_35"},
						{ID: "e4", Source: "AI_Act_26", Target: "AI_Act_13"},
					},
				},
			},
			Tokens: []string{
				"A **DPIA** is required ", "whenever processing is likely to result in a high risk ",
				"to the rights and freedoms of natural persons (GDPR Art. 35). ",
				"Typical triggers are systematic profiling, large-scale processing of special categories ",
				"and systematic monitoring of public areas.\n\n",
				"If the assessment shows a residual high risk, ", "you must consult the supervisory authority first (Art. 36). ",
				"Deployers of high-risk AI systems reuse the provider's documentation for their DPIA (AI Act Art. 26).",
			},
		},
		{
			Match:        "high-risk",
			TokenDelayMS: demoDelayMS,
			Metadata: &Metadata{
				Confidence: 74,
				Context: []model.Reference{
					{
						Text: "An AI system shall be considered to be high-risk where it is intended to be used as a safety component " +
							"of a product, or is itself a product, covered by the Union harmonisation legislation listed in Annex I.",
						Metadata: model.ReferenceMetadata{Title: "Classification rules for high-risk AI systems", ArticleNumber: "6", Regulation: "AI Act"},
						Score:    score(0.865),
						NodeID:   "AI_Act_6",
					},
					{
						Text: "Providers of high-risk AI systems shall ensure that their high-risk AI systems are compliant with the " +
							"requirements set out in Section 2.",
						Metadata: model.ReferenceMetadata{Title: "Obligations of providers of high-risk AI systems", ArticleNumber: "16", Regulation: "AI Act"},
						Score:    score(0.802),
						NodeID:   "AI_Act_16",
					},
				},
				GraphData: &model.Graph{
					Nodes: []model.Node{
						{ID: "AI_Act_6", Label: "AI Act Art. 6", Title: "Classification rules for high-risk AI systems", Type: model.NodeRetrieved},
						{ID: "AI_Act_16", Label: "AI Act Art. 16", Title: "Obligations of providers of high-risk AI systems", Type: model.NodeRetrieved},
						{ID: "AI_Act_Annex_III", Label: "Annex III", Title: "High-risk AI systems referred to in Article 6(2)", Type: model.NodeCited},
					},
					Edges: []model.Edge{
						{ID: "e1", Source: "AI_Act_6", Target: "AI_Act_Annex_III"},
						{ID: "e2", Source: "AI_Act_16", Target: "AI_Act_6"},
					},
				},
			},
			Tokens: []string{
				"Under the AI Act a system is **high-risk** ", "when it is a safety component of a product covered by Annex I ",
				"or falls into one of the use cases in Annex III (Art. 6). ",
				"Providers of such systems must meet the requirements of Chapter III Section 2 (Art. 16).",
			},
		},
		{
			Match:        "simulate error",
			TokenDelayMS: demoDelayMS,
			Tokens:       []string{"Looking that up... "},
			Error:        "retrieval service unavailable",
		},
		{
			Match:  "simulate outage",
			Status: 503,
		},
		{
			TokenDelayMS: demoDelayMS,
			Metadata:     &Metadata{Confidence: 35},
			Tokens: []string{
				"I could not find a passage in the EU AI Act or the GDPR ", "that answers this question. ",
				"Try asking about DPIAs or high-risk AI systems.",
			},
		},
	}}
}
