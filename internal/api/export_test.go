package api

var GenerateSpec = generateSpec
