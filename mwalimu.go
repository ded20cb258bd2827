// Package mwalimu implements a bilingual (English/Swahili) tutoring engine
// for Kenyan secondary-school curriculum content.
//
// Mwalimu coordinates two external collaborators: a Retriever that performs
// similarity search over an indexed textbook corpus, and a Generator that
// produces natural-language answers from assembled prompts. Results are
// cached with a TTL so repeated requests skip the expensive upstream calls.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/elimu-labs/mwalimu"
//	    "github.com/elimu-labs/mwalimu/cache"
//	    "github.com/elimu-labs/mwalimu/provider"
//	)
//
//	func main() {
//	    gen := provider.NewOpenAIGenerator(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//	    ret := provider.NewPineconeRetriever(provider.PineconeConfig{
//	        APIKey:    os.Getenv("PINECONE_API_KEY"),
//	        IndexHost: os.Getenv("PINECONE_INDEX_HOST"),
//	    }, gen)
//
//	    t := mwalimu.NewTutor(ret, gen,
//	        mwalimu.WithCache(cache.NewInMemoryCache(600)),
//	    )
//
//	    ans, err := t.Summarize(context.Background(), "3")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(ans.English)
//	    fmt.Println(ans.Swahili)
//	}
package mwalimu
