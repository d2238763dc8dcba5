package search

import "github.com/google/generative-ai-go/genai"

var recipesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recipes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":        {Type: genai.TypeString},
					"description":  {Type: genai.TypeString},
					"ingredients":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"instructions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"cookTime":     {Type: genai.TypeString},
				},
				Required: []string{"title", "description", "ingredients", "instructions", "cookTime"},
			},
		},
	},
	Required: []string{"recipes"},
}

var pantrySchema = &genai.Schema{
	Type:        genai.TypeArray,
	Description: "A comprehensive list of pantry items identified in the image.",
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"item": {
				Type:        genai.TypeString,
				Description: "The specific name of the item (e.g., 'Canned Tomatoes', 'Quinoa', 'Olive Oil').",
			},
			"category": {
				Type:        genai.TypeString,
				Description: "The broad category (e.g., 'Canned Goods', 'Grains', 'Condiments', 'Produce').",
			},
			"quantity_estimate": {
				Type:        genai.TypeString,
				Description: "Visual estimate of quantity (e.g., '1 full jar', 'approx 500g', '2 boxes').",
			},
		},
		Required: []string{"item", "category", "quantity_estimate"},
	},
}
